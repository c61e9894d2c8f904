// Package audio implements the advisory audio subsystem: decoding of raw
// 16-bit PCM speech payloads, synthesis of short alert tones, and a playback
// controller that owns at most one live narration session at a time.
//
// All sample data flowing through this package is normalized float32 in the
// range [-1, 1], channel-separated. Interleaved 16-bit little-endian PCM
// exists only at the decode boundary.
package audio

import "time"

// Buffer is a decoded, channel-separated floating-point audio buffer.
// Every channel slice has the same length (the frame count).
type Buffer struct {
	// SampleRate in Hz (24000 for the speech-synthesis payload format).
	SampleRate int

	// Channels holds one normalized sample slice per channel.
	Channels [][]float32
}

// ChannelCount returns the number of channels in the buffer.
func (b *Buffer) ChannelCount() int {
	return len(b.Channels)
}

// FrameCount returns the number of frames per channel. Zero for an empty
// buffer.
func (b *Buffer) FrameCount() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback duration of the buffer at its sample rate.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.SampleRate)
}

// Voice is a handle to one in-flight playback on a [Sink].
//
// Implementations must make Done observable from multiple goroutines and
// must close it exactly once, on natural completion or on Stop.
type Voice interface {
	// SetGain adjusts the playback gain live, without restarting playback.
	// Gain 0 silences the voice; 1 is unity.
	SetGain(gain float64)

	// Stop halts playback immediately. Safe to call more than once.
	Stop()

	// Done is closed when playback ends, naturally or via Stop.
	Done() <-chan struct{}
}

// Sink is an audio output device. The playback controller holds one
// long-lived sink; the alerter opens a throwaway sink per alert.
type Sink interface {
	// Play begins asynchronous playback of buf at the given initial gain
	// and returns a handle to the running voice.
	Play(buf *Buffer, gain float64) (Voice, error)

	// Close releases the sink. Voices obtained from a closed sink are
	// stopped.
	Close() error
}

// SinkOpener produces a new [Sink]. The playback controller opens one
// lazily and keeps it; the alerter opens and discards one per alert.
type SinkOpener func() (Sink, error)
