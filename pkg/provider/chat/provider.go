// Package chat defines the Provider interface for the conversational
// guardian channel.
package chat

import (
	"context"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// Provider produces assistant replies for the follow-up chat channel.
//
// Implementors must be safe for concurrent use. history is the full
// conversation so far, oldest first; implementations must not mutate it.
type Provider interface {
	Reply(ctx context.Context, message string, history []types.ChatTurn, language string) (string, error)
}
