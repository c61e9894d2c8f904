// Package types contains the shared domain types exchanged between the
// advisory orchestrator and the provider packages.
package types

// RiskLevel is the ordinal classification assigned to a submitted message
// or screenshot by the analysis backend.
type RiskLevel string

const (
	RiskSafe       RiskLevel = "SAFE"
	RiskSuspicious RiskLevel = "SUSPICIOUS"
	RiskDangerous  RiskLevel = "DANGEROUS"
)

// IsValid reports whether r is a recognised risk level.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskSafe, RiskSuspicious, RiskDangerous:
		return true
	}
	return false
}

// Alarming reports whether r warrants an audible alert.
func (r RiskLevel) Alarming() bool {
	return r == RiskSuspicious || r == RiskDangerous
}

// AnalysisRequest is a single user submission. At least one of Text and
// ImageData must be set; the orchestrator rejects empty submissions before
// dispatch.
type AnalysisRequest struct {
	// Text is the pasted message under suspicion. May be empty when a
	// screenshot is supplied instead.
	Text string `json:"text,omitempty"`

	// ImageData is an optional screenshot encoded as a data URI
	// (e.g. "data:image/png;base64,...").
	ImageData string `json:"image_data,omitempty"`

	// Language is the language code used for all generated output
	// (e.g. "en", "hi", "en-IN").
	Language string `json:"language"`
}

// Empty reports whether the request carries neither text nor an image.
func (r AnalysisRequest) Empty() bool {
	return r.Text == "" && r.ImageData == ""
}

// AnalysisResult is the verdict returned by the classification backend.
// A result is immutable once received; a new analysis replaces it wholesale.
//
// The JSON field names are the wire contract dictated by the backend and
// must not be changed.
type AnalysisResult struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	ConfidenceScore float64   `json:"confidence_score"`
	Summary         string    `json:"summary"`
	Explanation     string    `json:"explanation"`
	VoiceReadyText  string    `json:"voice_ready_text"`
	ActionSteps     []string  `json:"action_steps"`
}

// Fingerprint returns the alert deduplication key for this result. Two
// results with the same fingerprint never trigger a second audible alert.
func (r *AnalysisResult) Fingerprint() string {
	return string(r.RiskLevel) + "-" + r.Summary
}

// ChatRole identifies the author of a conversation turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one entry in the append-only conversation history of the
// guardian chat channel.
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
