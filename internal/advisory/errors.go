package advisory

import "errors"

// Sentinel errors returned by the orchestrator for conditions callers are
// expected to branch on.
var (
	// ErrEmptySubmission is returned by Submit when the request carries
	// neither text nor an image.
	ErrEmptySubmission = errors.New("advisory: submission carries no text or image")

	// ErrNoResult is returned when an operation needs a completed analysis
	// and none is held.
	ErrNoResult = errors.New("advisory: no analysis result available")

	// ErrDeepAnalysisPending is returned when a deep analysis is already in
	// flight for the current result.
	ErrDeepAnalysisPending = errors.New("advisory: deep analysis already in progress")

	// ErrDeepAnalysisExists is returned when the current result already has
	// a deep analysis attached.
	ErrDeepAnalysisExists = errors.New("advisory: deep analysis already present")

	// ErrChatPending is returned when a chat reply is already in flight.
	ErrChatPending = errors.New("advisory: chat reply already in progress")

	// ErrEmptyMessage is returned by Chat for a blank message.
	ErrEmptyMessage = errors.New("advisory: chat message is empty")

	// ErrSuperseded is returned when a newer submission or a reset replaced
	// the state an in-flight operation was about to apply to.
	ErrSuperseded = errors.New("advisory: operation superseded")
)
