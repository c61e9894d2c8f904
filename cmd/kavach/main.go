// Command kavach is the main entry point for the Kavach scam-advisory
// server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/advisory"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/api"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/config"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/observe"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/internal/prefs"
	"github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/audio"
	analysisgemini "github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/analysis/gemini"
	chatgemini "github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/chat/gemini"
	speechgemini "github.com/rohitpanda045/Kavach-AI-HackFiesta/pkg/provider/speech/gemini"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// .env is a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "kavach: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "kavach: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("kavach starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "kavach",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Preferences ───────────────────────────────────────────────────────────
	var store prefs.Store
	if cfg.Storage.PrefsDir != "" {
		store, err = prefs.NewBadgerStore(cfg.Storage.PrefsDir)
		if err != nil {
			slog.Error("failed to open preference store", "err", err, "dir", cfg.Storage.PrefsDir)
			return 1
		}
	} else {
		slog.Warn("storage.prefs_dir is empty; preferences will not survive restarts")
		store = prefs.NewMemStore()
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("preference store close error", "err", err)
		}
	}()

	settings, err := prefs.NewSettings(store)
	if err != nil {
		slog.Error("failed to load preferences", "err", err)
		return 1
	}

	// ── Gemini providers ──────────────────────────────────────────────────────
	apiKey := cfg.Gemini.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	analyzer, err := analysisgemini.New(ctx, apiKey, analysisOptions(cfg)...)
	if err != nil {
		slog.Error("failed to create analysis provider", "err", err)
		return 1
	}
	chatter, err := chatgemini.New(ctx, apiKey, chatOptions(cfg)...)
	if err != nil {
		slog.Error("failed to create chat provider", "err", err)
		return 1
	}
	synth, err := speechgemini.New(ctx, apiKey, speechOptions(cfg)...)
	if err != nil {
		slog.Error("failed to create speech provider", "err", err)
		return 1
	}

	// ── Audio ─────────────────────────────────────────────────────────────────
	// The null sink keeps the server fully functional on hosts without an
	// audio device; narration and alerts then run silently in real time.
	controller := audio.NewController(synth, audio.OpenNullSink)
	defer func() {
		if err := controller.Close(); err != nil {
			slog.Warn("playback close error", "err", err)
		}
	}()
	alerter := audio.NewAlerter(audio.OpenNullSink)

	// ── Orchestrator + HTTP server ────────────────────────────────────────────
	orch := advisory.New(analyzer, chatter, controller, alerter, settings,
		advisory.WithMetrics(metrics))

	server := api.NewServer(orch, settings, controller, metrics)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", addr)
		return server.Start(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider option wiring ────────────────────────────────────────────────────

func analysisOptions(cfg *config.Config) []analysisgemini.Option {
	var opts []analysisgemini.Option
	if cfg.Gemini.AnalysisModel != "" {
		opts = append(opts, analysisgemini.WithModel(cfg.Gemini.AnalysisModel))
	}
	if cfg.Gemini.ThinkingModel != "" {
		opts = append(opts, analysisgemini.WithThinkingModel(cfg.Gemini.ThinkingModel))
	}
	return opts
}

func chatOptions(cfg *config.Config) []chatgemini.Option {
	var opts []chatgemini.Option
	if cfg.Gemini.ChatModel != "" {
		opts = append(opts, chatgemini.WithModel(cfg.Gemini.ChatModel))
	}
	return opts
}

func speechOptions(cfg *config.Config) []speechgemini.Option {
	var opts []speechgemini.Option
	if cfg.Gemini.SpeechModel != "" {
		opts = append(opts, speechgemini.WithModel(cfg.Gemini.SpeechModel))
	}
	if cfg.Gemini.Voice != "" {
		opts = append(opts, speechgemini.WithVoice(cfg.Gemini.Voice))
	}
	return opts
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
