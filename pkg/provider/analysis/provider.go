// Package analysis defines the Provider interface for the scam
// classification backend.
//
// A provider wraps a remote multimodal model and returns a structured risk
// verdict for a submitted message and/or screenshot, plus an optional
// slower, more detailed narrative explanation ("deep analysis") for a
// verdict already in hand. Implementors must be safe for concurrent use and
// must propagate context cancellation promptly.
package analysis

import (
	"context"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// Provider is the abstraction over the classification backend.
type Provider interface {
	// Classify submits the request and returns the structured verdict.
	// The result shape is a fixed wire contract; implementations decode
	// against it and never invent fields.
	Classify(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error)

	// ExplainDeeply produces a detailed narrative explanation for a
	// request whose verdict is already known. result provides the context
	// of the existing verdict and must not be nil.
	//
	// Deep analysis is an enrichment path: callers treat failures as
	// non-fatal.
	ExplainDeeply(ctx context.Context, req types.AnalysisRequest, result *types.AnalysisResult) (string, error)
}
