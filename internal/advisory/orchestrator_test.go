package advisory_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/advisory"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/observe"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/audio"
	analysismock "github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/analysis/mock"
	chatmock "github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/chat/mock"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

type narration struct {
	text     string
	language string
	gain     float64
}

// stubNarrator records Play and Stop calls and tracks the speaking flag.
type stubNarrator struct {
	mu       sync.Mutex
	playErr  error
	speaking bool
	plays    []narration
	stops    int
}

func (n *stubNarrator) Play(ctx context.Context, text, language string, gain float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.playErr != nil {
		return n.playErr
	}
	n.plays = append(n.plays, narration{text: text, language: language, gain: gain})
	n.speaking = true
	return nil
}

func (n *stubNarrator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stops++
	n.speaking = false
}

func (n *stubNarrator) Speaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.speaking
}

func (n *stubNarrator) playCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.plays)
}

type alertCall struct {
	category audio.AlertCategory
	volume   float64
}

// stubAlerter records fired alerts.
type stubAlerter struct {
	mu    sync.Mutex
	calls []alertCall
}

func (a *stubAlerter) Play(category audio.AlertCategory, volume float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, alertCall{category: category, volume: volume})
}

func (a *stubAlerter) fired() []alertCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]alertCall, len(a.calls))
	copy(out, a.calls)
	return out
}

// stubVolume is a fixed VolumeSource.
type stubVolume struct{ v float64 }

func (s stubVolume) EffectiveVolume() float64 { return s.v }

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m
}

func dangerousResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		RiskLevel:       types.RiskDangerous,
		ConfidenceScore: 0.95,
		Summary:         "Lottery scam",
		Explanation:     "Nobody wins a lottery they never entered.",
		VoiceReadyText:  "This message is dangerous. Please do not reply.",
		ActionSteps:     []string{"Block the sender", "Do not share bank details"},
	}
}

type fixture struct {
	orch     *advisory.Orchestrator
	analyzer *analysismock.Provider
	chatter  *chatmock.Provider
	narrator *stubNarrator
	alerter  *stubAlerter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		analyzer: &analysismock.Provider{},
		chatter:  &chatmock.Provider{},
		narrator: &stubNarrator{},
		alerter:  &stubAlerter{},
	}
	f.orch = advisory.New(f.analyzer, f.chatter, f.narrator, f.alerter,
		stubVolume{v: 0.8}, advisory.WithMetrics(testMetrics(t)))
	return f
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSubmitRejectsEmptyRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Language: "en"})
	if !errors.Is(err, advisory.ErrEmptySubmission) {
		t.Fatalf("Submit() error = %v, want ErrEmptySubmission", err)
	}
	if got := f.orch.Snapshot().Phase; got != advisory.PhaseIdle {
		t.Errorf("phase = %q, want idle", got)
	}
}

func TestSubmitStoresResultAndAlertsOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.Result = dangerousResult()

	req := types.AnalysisRequest{Text: "You won 10 lakh! Click here.", Language: "en"}
	result, err := f.orch.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.RiskLevel != types.RiskDangerous {
		t.Errorf("RiskLevel = %q, want DANGEROUS", result.RiskLevel)
	}

	snap := f.orch.Snapshot()
	if snap.Phase != advisory.PhaseResult {
		t.Errorf("phase = %q, want result", snap.Phase)
	}
	if snap.Result == nil || snap.Result.Summary != "Lottery scam" {
		t.Errorf("snapshot result = %+v", snap.Result)
	}

	fired := f.alerter.fired()
	if len(fired) != 1 {
		t.Fatalf("got %d alerts, want 1", len(fired))
	}
	if fired[0].category != audio.AlertDanger {
		t.Errorf("alert category = %q, want danger", fired[0].category)
	}
	if fired[0].volume != 0.8 {
		t.Errorf("alert volume = %v, want 0.8", fired[0].volume)
	}

	// A resubmission with the identical verdict must not alert again.
	if _, err := f.orch.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := len(f.alerter.fired()); got != 1 {
		t.Errorf("got %d alerts after identical resubmission, want 1", got)
	}

	// A different verdict fingerprint fires again.
	other := dangerousResult()
	other.Summary = "Fake bank OTP request"
	f.analyzer.Result = other
	if _, err := f.orch.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := len(f.alerter.fired()); got != 2 {
		t.Errorf("got %d alerts after new fingerprint, want 2", got)
	}
}

func TestSubmitAlertCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		risk      types.RiskLevel
		wantAlert bool
		category  audio.AlertCategory
	}{
		{name: "safe is silent", risk: types.RiskSafe},
		{name: "suspicious fires caution", risk: types.RiskSuspicious, wantAlert: true, category: audio.AlertCaution},
		{name: "dangerous fires danger", risk: types.RiskDangerous, wantAlert: true, category: audio.AlertDanger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			r := dangerousResult()
			r.RiskLevel = tt.risk
			f.analyzer.Result = r

			if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			fired := f.alerter.fired()
			if !tt.wantAlert {
				if len(fired) != 0 {
					t.Fatalf("got %d alerts, want 0", len(fired))
				}
				return
			}
			if len(fired) != 1 || fired[0].category != tt.category {
				t.Fatalf("alerts = %+v, want one %q", fired, tt.category)
			}
		})
	}
}

func TestSubmitFailureEntersFailedPhase(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.ClassifyErr = errors.New("model unavailable")

	_, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"})
	if err == nil {
		t.Fatal("Submit() error = nil, want classify failure")
	}

	snap := f.orch.Snapshot()
	if snap.Phase != advisory.PhaseFailed {
		t.Errorf("phase = %q, want failed", snap.Phase)
	}
	if snap.Error == "" {
		t.Error("snapshot error message is empty")
	}
	if len(f.alerter.fired()) != 0 {
		t.Error("failed analysis fired an alert")
	}
}

func TestSubmitSupersededByReset(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	release := make(chan struct{})
	f.analyzer.ClassifyFn = func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
		<-release
		return dangerousResult(), nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"})
		done <- err
	}()

	waitFor(t, func() bool { return f.orch.Snapshot().Phase == advisory.PhaseSubmitting })
	f.orch.Reset()
	close(release)

	if err := <-done; !errors.Is(err, advisory.ErrSuperseded) {
		t.Fatalf("Submit() error = %v, want ErrSuperseded", err)
	}
	snap := f.orch.Snapshot()
	if snap.Phase != advisory.PhaseIdle || snap.Result != nil {
		t.Errorf("stale verdict applied after reset: %+v", snap)
	}
}

func TestDeepAnalysisLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if err := f.orch.RequestDeepAnalysis(context.Background()); !errors.Is(err, advisory.ErrNoResult) {
		t.Fatalf("RequestDeepAnalysis() error = %v, want ErrNoResult", err)
	}

	f.analyzer.Result = dangerousResult()
	f.analyzer.DeepText = "This scam works by manufacturing urgency."
	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := f.orch.RequestDeepAnalysis(context.Background()); err != nil {
		t.Fatalf("RequestDeepAnalysis() error = %v", err)
	}
	waitFor(t, func() bool { return f.orch.Snapshot().DeepAnalysis != "" })

	if err := f.orch.RequestDeepAnalysis(context.Background()); !errors.Is(err, advisory.ErrDeepAnalysisExists) {
		t.Fatalf("RequestDeepAnalysis() error = %v, want ErrDeepAnalysisExists", err)
	}

	// A new submission invalidates the deep analysis.
	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "other"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := f.orch.Snapshot().DeepAnalysis; got != "" {
		t.Errorf("deep analysis survived a new submission: %q", got)
	}
}

func TestDeepAnalysisRejectsConcurrentRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.Result = dangerousResult()

	release := make(chan struct{})
	f.analyzer.DeepFn = func(ctx context.Context, req types.AnalysisRequest, result *types.AnalysisResult) (string, error) {
		<-release
		return "deep", nil
	}

	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := f.orch.RequestDeepAnalysis(context.Background()); err != nil {
		t.Fatalf("RequestDeepAnalysis() error = %v", err)
	}
	if err := f.orch.RequestDeepAnalysis(context.Background()); !errors.Is(err, advisory.ErrDeepAnalysisPending) {
		t.Fatalf("RequestDeepAnalysis() error = %v, want ErrDeepAnalysisPending", err)
	}
	close(release)
	waitFor(t, func() bool { return f.orch.Snapshot().DeepAnalysis == "deep" })
}

func TestDeepAnalysisDiscardedByReset(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.Result = dangerousResult()

	release := make(chan struct{})
	resolved := make(chan struct{})
	f.analyzer.DeepFn = func(ctx context.Context, req types.AnalysisRequest, result *types.AnalysisResult) (string, error) {
		defer close(resolved)
		<-release
		return "stale deep text", nil
	}

	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := f.orch.RequestDeepAnalysis(context.Background()); err != nil {
		t.Fatalf("RequestDeepAnalysis() error = %v", err)
	}

	waitFor(t, func() bool { return f.orch.Snapshot().DeepPending })
	f.orch.Reset()
	close(release)
	<-resolved

	waitFor(t, func() bool { return !f.orch.Snapshot().DeepPending })
	snap := f.orch.Snapshot()
	if snap.DeepAnalysis != "" {
		t.Errorf("deep analysis = %q after reset, want empty", snap.DeepAnalysis)
	}
	if snap.Phase != advisory.PhaseIdle {
		t.Errorf("phase = %q, want idle", snap.Phase)
	}
}

func TestDeepAnalysisFailureRevertsSilently(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.Result = dangerousResult()
	f.analyzer.DeepErr = errors.New("thinking model overloaded")

	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := f.orch.RequestDeepAnalysis(context.Background()); err != nil {
		t.Fatalf("RequestDeepAnalysis() error = %v", err)
	}

	waitFor(t, func() bool { return !f.orch.Snapshot().DeepPending })
	snap := f.orch.Snapshot()
	if snap.DeepAnalysis != "" {
		t.Errorf("deep analysis = %q after failure, want empty", snap.DeepAnalysis)
	}
	if snap.Phase != advisory.PhaseResult {
		t.Errorf("phase = %q, want result (failure must not disturb the verdict)", snap.Phase)
	}
}

func TestChatAppendsTurns(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.chatter.Response = "A bank never asks for your PIN over chat."

	if _, err := f.orch.Chat(context.Background(), "  ", "en"); !errors.Is(err, advisory.ErrEmptyMessage) {
		t.Fatalf("Chat() error = %v, want ErrEmptyMessage", err)
	}

	reply, err := f.orch.Chat(context.Background(), "Is my bank asking for my PIN normal?", "en")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != f.chatter.Response {
		t.Errorf("reply = %q", reply)
	}

	history := f.orch.Snapshot().History
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3 (greeting, user, assistant)", len(history))
	}
	if history[0].Role != types.RoleAssistant {
		t.Errorf("history[0].Role = %q, want assistant greeting", history[0].Role)
	}
	if history[1].Role != types.RoleUser || history[2].Role != types.RoleAssistant {
		t.Errorf("history roles = %q, %q", history[1].Role, history[2].Role)
	}
}

func TestChatFailureAppendsApology(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.chatter.Err = errors.New("chat model down")

	reply, err := f.orch.Chat(context.Background(), "hello?", "en")
	if err != nil {
		t.Fatalf("Chat() error = %v, want graceful apology", err)
	}
	if !strings.Contains(reply, "trouble thinking") {
		t.Errorf("reply = %q, want the canned apology", reply)
	}
	history := f.orch.Snapshot().History
	if got := history[len(history)-1].Text; got != reply {
		t.Errorf("last turn = %q, want the apology appended", got)
	}
}

func TestChatDiscardedByReset(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	release := make(chan struct{})
	f.chatter.ReplyFn = func(ctx context.Context, message string, history []types.ChatTurn, language string) (string, error) {
		<-release
		return "too late", nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Chat(context.Background(), "question", "en")
		done <- err
	}()

	waitFor(t, func() bool { return f.orch.Snapshot().ChatPending })
	f.orch.Reset()
	close(release)

	if err := <-done; !errors.Is(err, advisory.ErrSuperseded) {
		t.Fatalf("Chat() error = %v, want ErrSuperseded", err)
	}
	history := f.orch.Snapshot().History
	if len(history) != 1 {
		t.Errorf("history length = %d after reset, want the greeting only", len(history))
	}
}

func TestChatSurvivesSubmit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.Result = dangerousResult()

	release := make(chan struct{})
	f.chatter.ReplyFn = func(ctx context.Context, message string, history []types.ChatTurn, language string) (string, error) {
		<-release
		return "still here", nil
	}

	done := make(chan string, 1)
	go func() {
		reply, err := f.orch.Chat(context.Background(), "question", "en")
		if err != nil {
			t.Errorf("Chat() error = %v", err)
		}
		done <- reply
	}()

	waitFor(t, func() bool { return f.orch.Snapshot().ChatPending })
	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	close(release)

	if reply := <-done; reply != "still here" {
		t.Errorf("reply = %q; a submit must not discard an in-flight chat reply", reply)
	}
}

func TestNarrateToggles(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if err := f.orch.Narrate(context.Background()); !errors.Is(err, advisory.ErrNoResult) {
		t.Fatalf("Narrate() error = %v, want ErrNoResult", err)
	}

	f.analyzer.Result = dangerousResult()
	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg", Language: "hi"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := f.orch.Narrate(context.Background()); err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if got := f.narrator.playCount(); got != 1 {
		t.Fatalf("got %d narrations, want 1", got)
	}
	f.narrator.mu.Lock()
	play := f.narrator.plays[0]
	f.narrator.mu.Unlock()
	if play.text != f.analyzer.Result.VoiceReadyText {
		t.Errorf("narrated text = %q", play.text)
	}
	if play.language != "hi" {
		t.Errorf("narration language = %q, want hi", play.language)
	}
	if play.gain != 0.8 {
		t.Errorf("narration gain = %v, want 0.8", play.gain)
	}

	// Toggling while speaking stops instead of starting another session.
	if err := f.orch.Narrate(context.Background()); err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if got := f.narrator.playCount(); got != 1 {
		t.Errorf("got %d narrations after toggle, want 1", got)
	}
	if f.narrator.Speaking() {
		t.Error("still speaking after toggle stop")
	}
}

func TestNarrateSwallowsPlaybackFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.Result = dangerousResult()
	f.narrator.playErr = errors.New("no audio device")

	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := f.orch.Narrate(context.Background()); err != nil {
		t.Errorf("Narrate() error = %v, want playback failures swallowed", err)
	}
}

func TestResetClearsSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.analyzer.Result = dangerousResult()
	f.chatter.Response = "reply"

	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := f.orch.Chat(context.Background(), "question", "en"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	f.orch.Reset()

	snap := f.orch.Snapshot()
	if snap.Phase != advisory.PhaseIdle {
		t.Errorf("phase = %q, want idle", snap.Phase)
	}
	if snap.Result != nil || snap.Error != "" || snap.DeepAnalysis != "" {
		t.Errorf("reset left state behind: %+v", snap)
	}
	if len(snap.History) != 1 {
		t.Errorf("history length = %d, want the greeting only", len(snap.History))
	}
	if f.narrator.stops == 0 {
		t.Error("reset did not stop narration")
	}

	// The alert fingerprint is cleared: the same verdict alerts again.
	if _, err := f.orch.Submit(context.Background(), types.AnalysisRequest{Text: "msg"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := len(f.alerter.fired()); got != 2 {
		t.Errorf("got %d alerts, want 2 (fingerprint cleared by reset)", got)
	}
}
