package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Synthesizer turns narration text into a base64-encoded 16-bit PCM payload
// at [SpeechSampleRate] Hz mono. Implemented by the speech provider.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}

// Controller plays synthesized narration through a single shared output
// sink. The sink is created lazily on first playback and reused for the
// lifetime of the controller — unlike the alerter's per-alert sinks.
//
// At most one playback session is alive at any time: starting a new one
// always stops the prior session first, sessions are never overlapped.
// All exported methods are safe for concurrent use.
type Controller struct {
	synth Synthesizer
	open  SinkOpener

	mu       sync.Mutex
	sink     Sink     // lazily created, long-lived
	session  *session // nil when nothing is playing
	speaking bool
	gen      uint64 // bumped by Stop to discard synthesis still in flight
}

// session is one live narration playback.
type session struct {
	id    string
	voice Voice
}

// NewController creates a playback controller. synth produces the speech
// payload; open is invoked once, on first playback, to create the shared
// output sink.
func NewController(synth Synthesizer, open SinkOpener) *Controller {
	return &Controller{synth: synth, open: open}
}

// Play requests synthesized speech for text, decodes it, and starts a new
// playback session at the given gain (0 when muted). Any session already
// active is stopped first; toggle semantics — stop instead of starting when
// the user is already being spoken to — are the caller's responsibility.
//
// The speaking flag is raised for the whole call, covering the synthesis
// round-trip, and is reset on any failure. Errors are returned for the
// caller to log; they carry no session state and playback is guaranteed
// stopped when Play returns non-nil.
func (c *Controller) Play(ctx context.Context, text, language string, gain float64) error {
	c.mu.Lock()
	c.stopLocked()
	c.speaking = true
	g := c.gen
	c.mu.Unlock()

	payload, err := c.synth.Synthesize(ctx, text, language)
	if err != nil {
		c.abort(g)
		return fmt.Errorf("audio: synthesize speech: %w", err)
	}

	buf, err := DecodePCM16(payload, SpeechSampleRate, SpeechChannels)
	if err != nil {
		c.abort(g)
		return fmt.Errorf("audio: decode speech: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A Stop during synthesis supersedes this playback.
	if c.gen != g {
		return nil
	}

	if c.sink == nil {
		sink, err := c.open()
		if err != nil {
			c.speaking = false
			return fmt.Errorf("audio: open output sink: %w", err)
		}
		c.sink = sink
	}

	voice, err := c.sink.Play(buf, gain)
	if err != nil {
		c.speaking = false
		return fmt.Errorf("audio: start playback: %w", err)
	}

	s := &session{id: uuid.NewString(), voice: voice}
	c.session = s

	// Clear the session when playback completes naturally. The identity
	// check guards against a newer session having replaced this one.
	go func() {
		<-voice.Done()
		c.mu.Lock()
		if c.session == s {
			c.session = nil
			c.speaking = false
		}
		c.mu.Unlock()
	}()

	slog.Debug("narration started",
		"session", s.id,
		"sample_rate", buf.SampleRate,
		"frames", buf.FrameCount(),
		"duration", buf.Duration(),
	)
	return nil
}

// Stop halts the active session, if any, and discards any synthesis still
// in flight. Idempotent: stopping an idle controller is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked interrupts the current session and bumps the generation so a
// concurrent Play that is still synthesizing drops its result.
// Must be called with c.mu held.
func (c *Controller) stopLocked() {
	c.gen++
	if c.session != nil {
		c.session.voice.Stop()
		c.session = nil
	}
	c.speaking = false
}

// Speaking reports whether a narration is active or being synthesized.
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// SetGain applies a new gain to the active session without restarting it.
// No-op when nothing is playing.
func (c *Controller) SetGain(gain float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.voice.SetGain(gain)
	}
}

// abort resets the speaking flag after a pre-playback failure, unless a
// newer Play or Stop already moved the generation on.
func (c *Controller) abort(g uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == g {
		c.speaking = false
	}
}

// Close stops playback and releases the shared sink.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	if c.sink == nil {
		return nil
	}
	err := c.sink.Close()
	c.sink = nil
	return err
}
