// Package mock provides a configurable in-memory speech.Provider for
// tests.
package mock

import (
	"context"
	"sync"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/speech"
)

// Compile-time check that *Provider satisfies [speech.Provider].
var _ speech.Provider = (*Provider)(nil)

// Call records a single Synthesize invocation.
type Call struct {
	Text     string
	Language string
}

// Provider is a mock speech.Provider. Configure the exported fields before
// use; calls are recorded for later inspection.
type Provider struct {
	mu sync.Mutex

	// Payload is returned by Synthesize when Err is nil. It should hold a
	// base64-encoded PCM stream such as audio.EncodePCM16 produces.
	Payload string
	// Err, when non-nil, is returned by Synthesize.
	Err error

	// SynthesizeFn, when set, overrides the canned Payload/Err pair.
	SynthesizeFn func(ctx context.Context, text, language string) (string, error)

	calls []Call
}

// Synthesize records the call and returns the configured payload.
func (p *Provider) Synthesize(ctx context.Context, text, language string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{Text: text, Language: language})
	fn := p.SynthesizeFn
	payload, err := p.Payload, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, language)
	}
	if err != nil {
		return "", err
	}
	return payload, nil
}

// Calls returns a copy of all recorded Synthesize invocations.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}
