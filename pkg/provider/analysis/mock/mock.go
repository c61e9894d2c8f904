// Package mock provides a configurable in-memory analysis.Provider for
// tests.
package mock

import (
	"context"
	"sync"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/analysis"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// Compile-time check that *Provider satisfies [analysis.Provider].
var _ analysis.Provider = (*Provider)(nil)

// Provider is a mock analysis.Provider. Configure the exported fields
// before use; calls are recorded for later inspection.
type Provider struct {
	mu sync.Mutex

	// Result is returned by Classify when ClassifyErr is nil.
	Result *types.AnalysisResult
	// ClassifyErr, when non-nil, is returned by Classify.
	ClassifyErr error

	// DeepText is returned by ExplainDeeply when DeepErr is nil.
	DeepText string
	// DeepErr, when non-nil, is returned by ExplainDeeply.
	DeepErr error

	// ClassifyFn, when set, overrides the canned Result/ClassifyErr pair.
	ClassifyFn func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error)
	// DeepFn, when set, overrides the canned DeepText/DeepErr pair.
	DeepFn func(ctx context.Context, req types.AnalysisRequest, result *types.AnalysisResult) (string, error)

	classifyCalls []types.AnalysisRequest
	deepCalls     []types.AnalysisRequest
}

// Classify records the request and returns the configured verdict.
func (p *Provider) Classify(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	p.mu.Lock()
	p.classifyCalls = append(p.classifyCalls, req)
	fn := p.ClassifyFn
	result, err := p.Result, p.ClassifyErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExplainDeeply records the request and returns the configured narrative.
func (p *Provider) ExplainDeeply(ctx context.Context, req types.AnalysisRequest, result *types.AnalysisResult) (string, error) {
	p.mu.Lock()
	p.deepCalls = append(p.deepCalls, req)
	fn := p.DeepFn
	text, err := p.DeepText, p.DeepErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req, result)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// ClassifyCalls returns a copy of all recorded Classify requests.
func (p *Provider) ClassifyCalls() []types.AnalysisRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.AnalysisRequest, len(p.classifyCalls))
	copy(out, p.classifyCalls)
	return out
}

// DeepCalls returns a copy of all recorded ExplainDeeply requests.
func (p *Provider) DeepCalls() []types.AnalysisRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.AnalysisRequest, len(p.deepCalls))
	copy(out, p.deepCalls)
	return out
}
