// Package speech defines the Provider interface for the speech-synthesis
// backend used to narrate advisories.
package speech

import "context"

// Provider synthesizes narration speech.
//
// Synthesize returns a base64-encoded stream of 16-bit signed little-endian
// PCM samples at 24000 Hz mono — the payload format declared by the
// backend, decoded by the audio subsystem. A missing or empty payload is an
// error; the provider never returns a partial success.
type Provider interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}
