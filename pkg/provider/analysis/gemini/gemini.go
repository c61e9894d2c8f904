// Package gemini implements analysis.Provider backed by Google's Gemini
// API via the google.golang.org/genai SDK.
//
// Classification requests constrain the model to a strict JSON response
// that mirrors the AnalysisResult wire contract. Deep analysis uses a
// thinking-enabled generation pass and returns free-form narrative text.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/analysis"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// Compile-time check that *Provider satisfies [analysis.Provider].
var _ analysis.Provider = (*Provider)(nil)

const (
	defaultModel         = "gemini-2.5-flash"
	defaultThinkingModel = "gemini-2.5-pro"

	// thinkingBudget caps the deep-analysis reasoning tokens.
	thinkingBudget = 2048
)

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithModel sets the model used for classification.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithThinkingModel sets the model used for deep analysis.
func WithThinkingModel(model string) Option {
	return func(p *Provider) { p.thinkingModel = model }
}

// Provider implements analysis.Provider backed by the Gemini API.
type Provider struct {
	client        *genai.Client
	model         string
	thinkingModel string
}

// New creates a Gemini analysis provider. apiKey must be non-empty.
func New(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: apiKey must not be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	p := &Provider{
		client:        client,
		model:         defaultModel,
		thinkingModel: defaultThinkingModel,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Classify submits the request and decodes the strict-JSON verdict.
func (p *Provider) Classify(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	parts, err := buildParts(classifyPrompt(req.Language), req)
	if err != nil {
		return nil, fmt.Errorf("gemini: classify: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(0.2)),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: parts}}, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: classify: %w", err)
	}

	result, err := parseAnalysisJSON(responseText(resp))
	if err != nil {
		return nil, fmt.Errorf("gemini: classify: %w", err)
	}
	return result, nil
}

// ExplainDeeply produces the thinking-mode narrative for an existing verdict.
func (p *Provider) ExplainDeeply(ctx context.Context, req types.AnalysisRequest, result *types.AnalysisResult) (string, error) {
	if result == nil {
		return "", errors.New("gemini: explain deeply: result must not be nil")
	}

	parts, err := buildParts(deepPrompt(req.Language, result), req)
	if err != nil {
		return "", fmt.Errorf("gemini: explain deeply: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(thinkingBudget)),
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.thinkingModel,
		[]*genai.Content{{Role: genai.RoleUser, Parts: parts}}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: explain deeply: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini: explain deeply: empty response")
	}
	return text, nil
}

// ── prompts ────────────────────────────────────────────────────────────────────

func classifyPrompt(language string) string {
	if language == "" {
		language = "en"
	}
	return `You are a scam-detection guardian protecting vulnerable users. ` +
		`Analyze the following message and/or screenshot for scam, phishing, or fraud indicators. ` +
		`Respond with a single JSON object with exactly these fields: ` +
		`"risk_level" (one of "SAFE", "SUSPICIOUS", "DANGEROUS"), ` +
		`"confidence_score" (number between 0 and 1), ` +
		`"summary" (one short headline), ` +
		`"explanation" (one or two plain sentences), ` +
		`"voice_ready_text" (a calm, reassuring spoken-word version of the advice), ` +
		`"action_steps" (array of short imperative strings). ` +
		`Write all text fields in the language with code "` + language + `".`
}

func deepPrompt(language string, result *types.AnalysisResult) string {
	if language == "" {
		language = "en"
	}
	return fmt.Sprintf(
		"An earlier quick scan classified the following content as %s (%q). "+
			"Think deeply and explain in detail how this kind of scam operates, "+
			"what specific signals in the content support the verdict, and how the "+
			"user can protect themselves. Answer as flowing narrative text in the "+
			"language with code %q.",
		result.RiskLevel, result.Summary, language,
	)
}

// ── request/response plumbing ──────────────────────────────────────────────────

// buildParts assembles the prompt, the suspicious text, and the optional
// screenshot into Gemini content parts.
func buildParts(prompt string, req types.AnalysisRequest) ([]*genai.Part, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if req.Text != "" {
		parts = append(parts, genai.NewPartFromText("Message:\n"+req.Text))
	}
	if req.ImageData != "" {
		mime, data, err := parseDataURI(req.ImageData)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.NewPartFromBytes(data, mime))
	}
	return parts, nil
}

// parseDataURI splits a "data:<mime>;base64,<payload>" URI into its MIME
// type and decoded bytes.
func parseDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("image data is not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("image data URI has no payload")
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("image data URI is not base64-encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode image data: %w", err)
	}
	return mime, data, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// parseAnalysisJSON decodes the model's JSON verdict and validates it
// against the wire contract.
func parseAnalysisJSON(raw string) (*types.AnalysisResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty response")
	}
	// Some models wrap JSON in a fenced code block despite the MIME hint.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	if !result.RiskLevel.IsValid() {
		return nil, fmt.Errorf("decode verdict: unknown risk level %q", result.RiskLevel)
	}
	if result.ConfidenceScore < 0 || result.ConfidenceScore > 1 {
		return nil, fmt.Errorf("decode verdict: confidence %v out of [0,1]", result.ConfidenceScore)
	}
	return &result, nil
}
