// Package gemini implements chat.Provider backed by Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/chat"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// Compile-time check that *Provider satisfies [chat.Provider].
var _ chat.Provider = (*Provider)(nil)

const defaultModel = "gemini-2.5-flash"

// systemPrompt frames the assistant as the guardian persona.
const systemPrompt = `You are a kind, patient online-safety guardian. ` +
	`You answer questions about suspicious messages, scams, and staying safe ` +
	`online in short, plain, non-technical sentences. Never ask the user for ` +
	`personal or financial details.`

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithModel sets the Gemini model used for chat replies.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// Provider implements chat.Provider backed by the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// New creates a Gemini chat provider. apiKey must be non-empty.
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
	p := &Provider{client: client, model: defaultModel}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Reply sends the conversation so far plus the new message and returns the
// assistant's reply text.
func (p *Provider) Reply(ctx context.Context, message string, history []types.ChatTurn, language string) (string, error) {
	if language == "" {
		language = "en"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(
			systemPrompt+` Answer in the language with code "`+language+`".`,
			genai.RoleUser,
		),
	}
	contents = append(contents, historyContents(history)...)
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.7)),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: chat reply: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini: chat reply: empty response")
	}
	return text, nil
}

// historyContents converts chat turns to Gemini contents, mapping the
// assistant role to the model role.
func historyContents(history []types.ChatTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		var role genai.Role = genai.RoleUser
		if turn.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
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
