// Package api exposes the advisory orchestrator over HTTP using Echo.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/advisory"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/observe"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/prefs"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/report"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/types"
)

// GainAdjuster applies a new gain to live audio output. Implemented by
// audio.Controller.
type GainAdjuster interface {
	SetGain(gain float64)
}

// Server wires the orchestrator, preferences, and report lookup into an
// Echo application.
type Server struct {
	echo     *echo.Echo
	orch     *advisory.Orchestrator
	settings *prefs.Settings
	gain     GainAdjuster
}

// NewServer builds the Echo application with all routes registered.
func NewServer(orch *advisory.Orchestrator, settings *prefs.Settings, gain GainAdjuster, metrics *observe.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(observe.Middleware(metrics))

	s := &Server{echo: e, orch: orch, settings: settings, gain: gain}

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	v1.POST("/analyze", s.analyze)
	v1.POST("/analyze/deep", s.analyzeDeep)
	v1.GET("/state", s.state)
	v1.POST("/chat", s.chat)
	v1.POST("/narrate", s.narrate)
	v1.POST("/reset", s.reset)
	v1.GET("/preferences", s.getPreferences)
	v1.PUT("/preferences", s.putPreferences)
	v1.GET("/report/portal", s.reportPortal)
	v1.GET("/report/summary", s.reportSummary)

	return s
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "kavach",
	})
}

func (s *Server) analyze(c echo.Context) error {
	var req types.AnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	result, err := s.orch.Submit(c.Request().Context(), req)
	switch {
	case errors.Is(err, advisory.ErrEmptySubmission):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "empty_submission",
			Message: "Provide a message or a screenshot to analyze",
		})
	case errors.Is(err, advisory.ErrSuperseded):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "superseded",
			Message: "A newer submission replaced this one",
		})
	case err != nil:
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "analysis_failed",
			Message: "The analysis service could not process the submission",
		})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) analyzeDeep(c echo.Context) error {
	err := s.orch.RequestDeepAnalysis(c.Request().Context())
	switch {
	case errors.Is(err, advisory.ErrNoResult):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no_result",
			Message: "Run an analysis before requesting a deep explanation",
		})
	case errors.Is(err, advisory.ErrDeepAnalysisPending), errors.Is(err, advisory.ErrDeepAnalysisExists):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "deep_analysis_unavailable",
			Message: err.Error(),
		})
	case err != nil:
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "deep_analysis_failed",
			Message: "The analysis service could not start the deep explanation",
		})
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) state(c echo.Context) error {
	return c.JSON(http.StatusOK, s.orch.Snapshot())
}

func (s *Server) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	reply, err := s.orch.Chat(c.Request().Context(), req.Message, req.Language)
	switch {
	case errors.Is(err, advisory.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "empty_message",
			Message: "Chat message must not be empty",
		})
	case errors.Is(err, advisory.ErrChatPending):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "chat_pending",
			Message: "A chat reply is already in progress",
		})
	case errors.Is(err, advisory.ErrSuperseded):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "superseded",
			Message: "The session was reset while the reply was in flight",
		})
	case err != nil:
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "chat_failed",
			Message: "The chat service could not produce a reply",
		})
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Reply:   reply,
		History: s.orch.Snapshot().History,
	})
}

func (s *Server) narrate(c echo.Context) error {
	err := s.orch.Narrate(c.Request().Context())
	if errors.Is(err, advisory.ErrNoResult) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no_result",
			Message: "Run an analysis before asking for narration",
		})
	}
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "narration_failed",
			Message: "Narration could not be started",
		})
	}
	return c.JSON(http.StatusOK, NarrateResponse{
		Speaking: s.orch.Snapshot().Speaking,
	})
}

func (s *Server) reset(c echo.Context) error {
	s.orch.Reset()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getPreferences(c echo.Context) error {
	return c.JSON(http.StatusOK, s.settings.Current())
}

func (s *Server) putPreferences(c echo.Context) error {
	var req prefs.Preferences
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	// Moving the volume slider while muted unmutes.
	current := s.settings.Current()
	if req.Muted && current.Muted && req.Volume != current.Volume {
		req.Muted = false
	}

	if err := s.settings.Update(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_preferences",
			Message: err.Error(),
		})
	}

	// Apply immediately to any live narration.
	s.gain.SetGain(s.settings.EffectiveVolume())

	return c.JSON(http.StatusOK, s.settings.Current())
}

func (s *Server) reportPortal(c echo.Context) error {
	return c.JSON(http.StatusOK, PortalResponse{
		URL: report.PortalURL(c.QueryParam("lang")),
	})
}

func (s *Server) reportSummary(c echo.Context) error {
	snap := s.orch.Snapshot()
	if snap.Result == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no_result",
			Message: "Run an analysis before requesting a report",
		})
	}
	return c.JSON(http.StatusOK, SummaryResponse{
		Report: report.FormatReport(snap.Result, snap.Request.Text),
	})
}
