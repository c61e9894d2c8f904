// Package advisory implements the orchestrator that drives a scam-advisory
// session: submitting content for classification, optionally deepening the
// verdict, narrating it aloud, alerting audibly on risky verdicts, and
// carrying an independent guardian chat channel.
//
// The orchestrator is a mutex-guarded state machine. The primary channel
// moves Idle → Submitting → (Result | Failed); deep analysis and narration
// hang off a held result; chat runs beside all of it. In-flight provider
// calls are guarded by generation counters so a newer submission or a reset
// silently discards results that arrive late. The chat channel has its own
// counter, bumped only by Reset, so a new submission never discards an
// in-flight chat reply.
package advisory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/observe"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/audio"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/analysis"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/chat"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// Phase is the primary-channel state of the orchestrator.
type Phase string

const (
	// PhaseIdle means no submission is held.
	PhaseIdle Phase = "idle"
	// PhaseSubmitting means a classification call is in flight.
	PhaseSubmitting Phase = "submitting"
	// PhaseResult means a verdict is held and further operations
	// (deep analysis, narration) may hang off it.
	PhaseResult Phase = "result"
	// PhaseFailed means the last classification attempt errored.
	PhaseFailed Phase = "failed"
)

// greeting seeds the chat history so the channel never opens cold.
const greeting = "Hello! I am your Kavach AI guardian. Do you have any " +
	"questions about a message you received or how to stay safe online?"

// chatApology is appended as the assistant turn when the chat backend
// fails, so the conversation degrades gracefully instead of erroring.
const chatApology = "I'm sorry, I'm having trouble thinking right now. " +
	"Could you ask me again in a moment?"

// Narrator plays synthesized narration. Implemented by audio.Controller.
type Narrator interface {
	Play(ctx context.Context, text, language string, gain float64) error
	Stop()
	Speaking() bool
}

// AlertPlayer fires an audible alert tone. Implemented by audio.Alerter.
type AlertPlayer interface {
	Play(category audio.AlertCategory, volume float64)
}

// VolumeSource supplies the user's effective output volume, 0 when muted.
type VolumeSource interface {
	EffectiveVolume() float64
}

// Snapshot is a point-in-time copy of the orchestrator state, served to
// clients polling for progress. The result pointer is shared but results
// are immutable once received.
type Snapshot struct {
	Phase        Phase                 `json:"phase"`
	Request      types.AnalysisRequest `json:"request"`
	Result       *types.AnalysisResult `json:"result,omitempty"`
	Error        string                `json:"error,omitempty"`
	DeepAnalysis string                `json:"deep_analysis,omitempty"`
	DeepPending  bool                  `json:"deep_pending"`
	ChatPending  bool                  `json:"chat_pending"`
	History      []types.ChatTurn      `json:"history"`
	Speaking     bool                  `json:"speaking"`
}

// Option configures an Orchestrator during construction.
type Option func(*Orchestrator)

// WithMetrics overrides the metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator drives one advisory session. All exported methods are safe
// for concurrent use.
type Orchestrator struct {
	analyzer analysis.Provider
	chatter  chat.Provider
	narrator Narrator
	alerter  AlertPlayer
	volume   VolumeSource
	metrics  *observe.Metrics

	mu          sync.Mutex
	phase       Phase
	gen         uint64 // primary + deep channel generation
	chatGen     uint64 // chat channel generation, bumped only by Reset
	request     types.AnalysisRequest
	result      *types.AnalysisResult
	errMsg      string
	deepText    string
	deepPending bool
	chatPending bool
	history     []types.ChatTurn
	lastAlert   string // fingerprint of the last audible alert
}

// New creates an orchestrator wired to its collaborators.
func New(analyzer analysis.Provider, chatter chat.Provider, narrator Narrator, alerter AlertPlayer, volume VolumeSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		analyzer: analyzer,
		chatter:  chatter,
		narrator: narrator,
		alerter:  alerter,
		volume:   volume,
		phase:    PhaseIdle,
		history:  []types.ChatTurn{{Role: types.RoleAssistant, Text: greeting}},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	return o
}

// Submit starts a new analysis cycle. It validates the request, discards
// any held verdict and deep analysis, stops narration, and blocks on the
// classification call. On success the verdict is stored wholesale and, for
// an alarming risk level not already alerted on, an audible alert fires
// once. Returns ErrSuperseded when a newer submission or a reset arrived
// while classification was in flight.
func (o *Orchestrator) Submit(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	if req.Empty() {
		return nil, ErrEmptySubmission
	}

	o.mu.Lock()
	o.gen++
	g := o.gen
	o.phase = PhaseSubmitting
	o.request = req
	o.result = nil
	o.errMsg = ""
	o.deepText = ""
	o.deepPending = false
	o.mu.Unlock()

	// A fresh submission always silences the previous verdict's narration.
	o.narrator.Stop()

	start := time.Now()
	result, err := o.analyzer.Classify(ctx, req)
	o.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())

	o.mu.Lock()
	if o.gen != g {
		o.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		o.phase = PhaseFailed
		o.errMsg = err.Error()
		o.mu.Unlock()
		o.metrics.RecordAnalysisRequest(ctx, "", "error")
		o.metrics.RecordProviderError(ctx, "gemini", "analysis")
		return nil, err
	}
	o.phase = PhaseResult
	o.result = result

	fire := result.RiskLevel.Alarming() && result.Fingerprint() != o.lastAlert
	if fire {
		o.lastAlert = result.Fingerprint()
	}
	o.mu.Unlock()

	o.metrics.RecordAnalysisRequest(ctx, string(result.RiskLevel), "ok")

	if fire {
		category := audio.AlertCaution
		if result.RiskLevel == types.RiskDangerous {
			category = audio.AlertDanger
		}
		o.alerter.Play(category, o.volume.EffectiveVolume())
		o.metrics.RecordAlert(ctx, string(category))
	}
	return result, nil
}

// RequestDeepAnalysis starts the slow thinking-mode explanation for the
// held verdict. Rejections are synchronous: no result, already pending, or
// already present. The provider call itself runs in the background; its
// outcome is observed through [Orchestrator.Snapshot]. A provider failure
// reverts to the plain result with a log line and is never surfaced to the
// caller.
func (o *Orchestrator) RequestDeepAnalysis(ctx context.Context) error {
	o.mu.Lock()
	if o.phase != PhaseResult || o.result == nil {
		o.mu.Unlock()
		return ErrNoResult
	}
	if o.deepPending {
		o.mu.Unlock()
		return ErrDeepAnalysisPending
	}
	if o.deepText != "" {
		o.mu.Unlock()
		return ErrDeepAnalysisExists
	}
	o.deepPending = true
	g := o.gen
	req := o.request
	result := o.result
	o.mu.Unlock()

	// Outlive the triggering HTTP request.
	bg := context.WithoutCancel(ctx)
	go o.runDeepAnalysis(bg, g, req, result)
	return nil
}

func (o *Orchestrator) runDeepAnalysis(ctx context.Context, g uint64, req types.AnalysisRequest, result *types.AnalysisResult) {
	start := time.Now()
	text, err := o.analyzer.ExplainDeeply(ctx, req, result)
	o.metrics.DeepAnalysisDuration.Record(ctx, time.Since(start).Seconds())

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gen != g {
		// A newer submission or a reset owns the state now.
		return
	}
	o.deepPending = false
	if err != nil {
		observe.Logger(ctx).Warn("deep analysis failed", "err", err)
		o.metrics.RecordProviderError(ctx, "gemini", "deep_analysis")
		return
	}
	o.deepText = text
}

// Chat sends one user message down the guardian chat channel and returns
// the assistant reply. The user turn is appended before the provider call;
// on provider failure a canned apology is appended and returned instead of
// an error. Returns ErrSuperseded when a reset arrived while the reply was
// in flight (the user turn stays discarded with the rest of the session).
func (o *Orchestrator) Chat(ctx context.Context, message, language string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	o.mu.Lock()
	if o.chatPending {
		o.mu.Unlock()
		return "", ErrChatPending
	}
	o.chatPending = true
	o.history = append(o.history, types.ChatTurn{Role: types.RoleUser, Text: message})
	cg := o.chatGen
	history := make([]types.ChatTurn, len(o.history))
	copy(history, o.history)
	o.mu.Unlock()

	start := time.Now()
	reply, err := o.chatter.Reply(ctx, message, history, language)
	o.metrics.ChatDuration.Record(ctx, time.Since(start).Seconds())

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.chatGen != cg {
		return "", ErrSuperseded
	}
	o.chatPending = false
	if err != nil {
		observe.Logger(ctx).Warn("chat reply failed", "err", err)
		o.metrics.RecordProviderError(ctx, "gemini", "chat")
		reply = chatApology
	}
	o.history = append(o.history, types.ChatTurn{Role: types.RoleAssistant, Text: reply})
	return reply, nil
}

// Narrate toggles narration of the held verdict's voice-ready text. When a
// narration is already playing (or being synthesized) it stops instead of
// starting another. Playback failures degrade silently: logged, counted,
// never returned.
func (o *Orchestrator) Narrate(ctx context.Context) error {
	if o.narrator.Speaking() {
		o.narrator.Stop()
		return nil
	}

	o.mu.Lock()
	if o.result == nil {
		o.mu.Unlock()
		return ErrNoResult
	}
	text := o.result.VoiceReadyText
	language := o.request.Language
	o.mu.Unlock()

	start := time.Now()
	err := o.narrator.Play(ctx, text, language, o.volume.EffectiveVolume())
	o.metrics.SynthesisDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		observe.Logger(ctx).Warn("narration failed", "err", err)
		o.metrics.RecordProviderError(ctx, "gemini", "speech")
		return nil
	}
	o.metrics.PlaybackSessions.Add(ctx, 1)
	return nil
}

// Reset returns the session to idle: request, verdict, deep analysis,
// error, and alert fingerprint are cleared, narration stops, and both
// generation counters move on so every in-flight provider call lands in
// the void. Chat history is deliberately truncated to a fresh greeting
// turn rather than carried over: a reply discarded mid-flight must not
// leave a dangling user turn behind.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.gen++
	o.chatGen++
	o.phase = PhaseIdle
	o.request = types.AnalysisRequest{}
	o.result = nil
	o.errMsg = ""
	o.deepText = ""
	o.deepPending = false
	o.chatPending = false
	o.lastAlert = ""
	o.history = []types.ChatTurn{{Role: types.RoleAssistant, Text: greeting}}
	o.mu.Unlock()

	o.narrator.Stop()
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	history := make([]types.ChatTurn, len(o.history))
	copy(history, o.history)
	return Snapshot{
		Phase:        o.phase,
		Request:      o.request,
		Result:       o.result,
		Error:        o.errMsg,
		DeepAnalysis: o.deepText,
		DeepPending:  o.deepPending,
		ChatPending:  o.chatPending,
		History:      history,
		Speaking:     o.narrator.Speaking(),
	}
}
