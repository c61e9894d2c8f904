package audio

import (
	"sync"
	"time"
)

// Compile-time interface checks.
var (
	_ Sink  = (*NullSink)(nil)
	_ Voice = (*nullVoice)(nil)
)

// NullSink is an output sink for platforms without an audio output
// capability. It consumes buffers on a real-time clock — a voice completes
// after the buffer's duration — but produces no sound. This keeps the
// playback controller's session lifecycle (and anything observing the
// speaking flag) behaving normally while degrading silently.
type NullSink struct {
	mu     sync.Mutex
	voices []*nullVoice
	closed bool
}

// NewNullSink creates a silent output sink.
func NewNullSink() *NullSink {
	return &NullSink{}
}

// OpenNullSink is a [SinkOpener] returning a fresh [NullSink]. It never
// fails.
func OpenNullSink() (Sink, error) {
	return NewNullSink(), nil
}

// Play starts a silent voice that completes after buf's duration.
func (s *NullSink) Play(buf *Buffer, gain float64) (Voice, error) {
	v := &nullVoice{
		gain: gain,
		done: make(chan struct{}),
	}
	v.timer = time.AfterFunc(buf.Duration(), v.Stop)

	s.mu.Lock()
	s.voices = append(s.voices, v)
	s.mu.Unlock()
	return v, nil
}

// Close stops all voices started on this sink. Idempotent.
func (s *NullSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	voices := s.voices
	s.voices = nil
	s.mu.Unlock()

	for _, v := range voices {
		v.Stop()
	}
	return nil
}

// nullVoice tracks gain and completion for a silent playback.
type nullVoice struct {
	mu    sync.Mutex
	gain  float64
	timer *time.Timer
	done  chan struct{}
	ended bool
}

func (v *nullVoice) SetGain(gain float64) {
	v.mu.Lock()
	v.gain = gain
	v.mu.Unlock()
}

func (v *nullVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ended {
		return
	}
	v.ended = true
	if v.timer != nil {
		v.timer.Stop()
	}
	close(v.done)
}

func (v *nullVoice) Done() <-chan struct{} {
	return v.done
}
