// Package mock provides scriptable test doubles for the audio output sink.
//
// Use [Sink] to capture played buffers and drive voice completion from a
// test:
//
//	sink := mock.NewSink()
//	ctrl := audio.NewController(synth, sink.Opener())
//	...
//	sink.Plays()[0].Finish() // simulate natural end of playback
package mock

import (
	"sync"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/audio"
)

// Compile-time interface checks.
var (
	_ audio.Sink  = (*Sink)(nil)
	_ audio.Voice = (*Play)(nil)
)

// Sink is a mock implementation of [audio.Sink] that records every Play
// call. Voices never complete on their own; tests call [Play.Finish] to
// simulate natural end-of-playback.
type Sink struct {
	mu sync.Mutex

	// PlayErr, if non-nil, is returned by Play instead of starting a voice.
	PlayErr error

	plays  []*Play
	closed bool
}

// NewSink creates an empty mock sink.
func NewSink() *Sink {
	return &Sink{}
}

// Opener returns an [audio.SinkOpener] that always hands out this sink.
func (s *Sink) Opener() audio.SinkOpener {
	return func() (audio.Sink, error) { return s, nil }
}

// Play records the call and returns a [Play] voice handle.
func (s *Sink) Play(buf *audio.Buffer, gain float64) (audio.Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PlayErr != nil {
		return nil, s.PlayErr
	}
	p := &Play{
		Buffer: buf,
		gain:   gain,
		done:   make(chan struct{}),
	}
	s.plays = append(s.plays, p)
	return p, nil
}

// Close marks the sink closed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Plays returns a snapshot of all recorded Play calls in order.
func (s *Sink) Plays() []*Play {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Play, len(s.plays))
	copy(out, s.plays)
	return out
}

// Live returns the number of recorded voices that are neither stopped nor
// finished — the sampled session count.
func (s *Sink) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.plays {
		if !p.ended() {
			n++
		}
	}
	return n
}

// Play is one recorded playback and its controllable voice handle.
type Play struct {
	// Buffer is the buffer passed to Sink.Play.
	Buffer *audio.Buffer

	mu      sync.Mutex
	gain    float64
	stopped bool
	closed  bool
	done    chan struct{}
}

// Gain returns the most recently applied gain.
func (p *Play) Gain() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gain
}

// Stopped reports whether Stop was called on this voice.
func (p *Play) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Finish simulates natural end-of-playback by closing Done.
func (p *Play) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeDoneLocked()
}

// SetGain implements [audio.Voice].
func (p *Play) SetGain(gain float64) {
	p.mu.Lock()
	p.gain = gain
	p.mu.Unlock()
}

// Stop implements [audio.Voice].
func (p *Play) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.closeDoneLocked()
}

// Done implements [audio.Voice].
func (p *Play) Done() <-chan struct{} {
	return p.done
}

func (p *Play) closeDoneLocked() {
	if !p.closed {
		p.closed = true
		close(p.done)
	}
}

func (p *Play) ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
