// Package mock provides a configurable in-memory chat.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/chat"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// Compile-time check that *Provider satisfies [chat.Provider].
var _ chat.Provider = (*Provider)(nil)

// Call records a single Reply invocation.
type Call struct {
	Message  string
	History  []types.ChatTurn
	Language string
}

// Provider is a mock chat.Provider. Configure the exported fields before
// use; calls are recorded for later inspection.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Reply when Err is nil.
	Response string
	// Err, when non-nil, is returned by Reply.
	Err error

	// ReplyFn, when set, overrides the canned Response/Err pair.
	ReplyFn func(ctx context.Context, message string, history []types.ChatTurn, language string) (string, error)

	calls []Call
}

// Reply records the call and returns the configured response.
func (p *Provider) Reply(ctx context.Context, message string, history []types.ChatTurn, language string) (string, error) {
	p.mu.Lock()
	snapshot := make([]types.ChatTurn, len(history))
	copy(snapshot, history)
	p.calls = append(p.calls, Call{Message: message, History: snapshot, Language: language})
	fn := p.ReplyFn
	response, err := p.Response, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, message, history, language)
	}
	if err != nil {
		return "", err
	}
	return response, nil
}

// Calls returns a copy of all recorded Reply invocations.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}
