package api

import "github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"

// ErrorResponse is the error body returned by every failing endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ChatRequest is the request payload for POST /api/v1/chat.
type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

// ChatResponse carries the assistant reply for a chat turn.
type ChatResponse struct {
	Reply   string           `json:"reply"`
	History []types.ChatTurn `json:"history"`
}

// NarrateResponse reports the speaking state after a narration toggle.
type NarrateResponse struct {
	Speaking bool `json:"speaking"`
}

// PortalResponse carries the reporting-portal lookup result.
type PortalResponse struct {
	URL string `json:"url"`
}

// SummaryResponse carries the formatted shareable report.
type SummaryResponse struct {
	Report string `json:"report"`
}
