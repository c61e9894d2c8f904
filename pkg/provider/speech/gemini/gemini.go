// Package gemini implements speech.Provider backed by Gemini's native
// text-to-speech models.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/speech"
)

// Compile-time check that *Provider satisfies [speech.Provider].
var _ speech.Provider = (*Provider)(nil)

const (
	defaultModel = "gemini-2.5-flash-preview-tts"
	defaultVoice = "Puck"
)

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithModel sets the Gemini TTS model.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithVoice sets the prebuilt voice used for synthesis.
func WithVoice(voice string) Option {
	return func(p *Provider) { p.voice = voice }
}

// Provider implements speech.Provider backed by the Gemini API. Synthesized
// audio arrives as raw 16-bit little-endian PCM at 24000 Hz mono, which the
// provider hands on base64-encoded.
type Provider struct {
	client *genai.Client
	model  string
	voice  string
}

// New creates a Gemini speech provider. apiKey must be non-empty.
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
	p := &Provider{client: client, model: defaultModel, voice: defaultVoice}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Synthesize renders text to speech and returns the base64-encoded PCM
// payload. An empty payload from the backend is an error.
func (p *Provider) Synthesize(ctx context.Context, text, language string) (string, error) {
	if text == "" {
		return "", errors.New("gemini: synthesize: text must not be empty")
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: p.voice,
				},
			},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(framePrompt(text, language), genai.RoleUser)},
		cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: synthesize: %w", err)
	}

	data := inlineAudio(resp)
	if len(data) == 0 {
		return "", errors.New("gemini: synthesize: voice data missing")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// framePrompt wraps the advisory text with delivery instructions so the
// voice stays gentle and reassuring.
func framePrompt(text, language string) string {
	if language == "" {
		language = "en"
	}
	return fmt.Sprintf(
		"Say the following in a gentle, calm, and reassuring tone, "+
			"in the language with code %q: %s",
		language, text,
	)
}

// inlineAudio extracts the first inline audio payload from the response.
func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
