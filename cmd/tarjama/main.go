// Command tarjama is the live sermon translation server: it captures
// microphone audio, segments it into utterances, transcribes and translates
// each one, and serves the captions to console and WebSocket clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tarjama-live/tarjama/internal/capture"
	"github.com/tarjama-live/tarjama/internal/config"
	"github.com/tarjama-live/tarjama/internal/display"
	"github.com/tarjama-live/tarjama/internal/health"
	"github.com/tarjama-live/tarjama/internal/observe"
	"github.com/tarjama-live/tarjama/internal/pipeline"
	"github.com/tarjama-live/tarjama/internal/queue"
	"github.com/tarjama-live/tarjama/internal/resilience"
	"github.com/tarjama-live/tarjama/internal/translog"
	"github.com/tarjama-live/tarjama/pkg/provider/asr"
	"github.com/tarjama-live/tarjama/pkg/provider/asr/whisper"
	"github.com/tarjama-live/tarjama/pkg/provider/translate"
	"github.com/tarjama-live/tarjama/pkg/provider/translate/libre"
	"github.com/tarjama-live/tarjama/pkg/types"
)

const defaultConfigPath = "config.yaml"

func main() {
	os.Exit(run())
}

// lateControl routes the display's control surface to a controller that is
// constructed after the display. Methods are only invoked once the HTTP
// server is serving, by which point the controller exists.
type lateControl struct {
	ctl **pipeline.Controller
}

func (l lateControl) Mode() types.Mode           { return (*l.ctl).Mode() }
func (l lateControl) SetMode(m types.Mode) error { return (*l.ctl).SetMode(m) }

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", defaultConfigPath, "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && *configPath == defaultConfigPath {
			cfg = config.Default()
		} else {
			fmt.Fprintf(os.Stderr, "tarjama: %v\n", err)
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	slog.Info("tarjama starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"mode", cfg.InitialMode,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "tarjama"})
	if err != nil {
		slog.Error("failed to initialise metrics provider", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()
	metrics := observe.Default()

	// ── Providers ─────────────────────────────────────────────────────────────
	engine, err := buildEngine(cfg)
	if err != nil {
		slog.Error("failed to build asr engine", "err", err)
		return 1
	}

	var translator translate.Translator = translate.Passthrough{}
	if cfg.Translate.BaseURL != "" {
		var opts []libre.Option
		if cfg.Translate.Timeout > 0 {
			opts = append(opts, libre.WithTimeout(cfg.Translate.Timeout.Std()))
		}
		if cfg.Translate.APIKey != "" {
			opts = append(opts, libre.WithAPIKey(cfg.Translate.APIKey))
		}
		chain := resilience.NewChain("libre", libre.New(cfg.Translate.BaseURL, opts...), resilience.BreakerConfig{})
		if cfg.Translate.FallbackPassthrough {
			chain.Add("passthrough", translate.Passthrough{})
		}
		translator = chain
		slog.Info("translator configured",
			"base_url", cfg.Translate.BaseURL,
			"fallback_passthrough", cfg.Translate.FallbackPassthrough,
		)
	} else {
		slog.Warn("translate.base_url not set — captions will show untranslated transcripts")
	}

	// ── Transcript log ────────────────────────────────────────────────────────
	var transcript translog.Sink
	if cfg.Transcript.Dir != "" {
		logger, err := translog.New(cfg.Transcript.Dir)
		if err != nil {
			slog.Error("failed to open transcript log", "err", err)
			return 1
		}
		defer logger.Close()
		transcript = logger
		slog.Info("transcript log opened", "path", logger.Path())
	}

	// ── Pipeline wiring ───────────────────────────────────────────────────────
	var ctl *pipeline.Controller

	broadcaster := display.NewBroadcaster(lateControl{&ctl})
	sink := display.Multi(display.NewConsole(os.Stdout), broadcaster)

	segments := queue.NewDropNewest[types.Utterance](cfg.Pipeline.SegmentQueueCapacity)
	worker := pipeline.NewWorker(segments, engine, translator, sink, transcript,
		cfg.Pipeline.PollInterval.Std(), metrics)

	capCfg := capture.Config{
		SampleRate:         cfg.Audio.SampleRate,
		ChunkDuration:      cfg.Audio.ChunkDuration.Std(),
		SilenceDuration:    cfg.Segmenter.SilenceDuration.Std(),
		SilenceThreshold:   cfg.Segmenter.SilenceThreshold,
		FrameQueueCapacity: cfg.Pipeline.FrameQueueCapacity,
		PollInterval:       cfg.Pipeline.PollInterval.Std(),
	}
	capWorker := capture.New(capCfg, segments, func() types.Mode { return ctl.Mode() }, metrics)

	initialMode, err := types.ParseMode(cfg.InitialMode)
	if err != nil {
		slog.Error("invalid initial mode", "err", err)
		return 1
	}
	ctl = pipeline.NewController(capWorker, worker, initialMode)

	// ── HTTP surface ──────────────────────────────────────────────────────────
	var server *http.Server
	if cfg.Server.ListenAddr != "" {
		checks := []health.Check{
			{Name: "pipeline", Probe: func(context.Context) error {
				if s := ctl.State(); s != pipeline.StateRunning {
					return fmt.Errorf("pipeline is %s", s)
				}
				return nil
			}},
		}
		if p, ok := engine.(interface{ Ping(context.Context) error }); ok {
			checks = append(checks, health.Check{Name: "asr", Probe: p.Ping})
		}

		mux := http.NewServeMux()
		mux.Handle("/ws", broadcaster)
		mux.Handle("/metrics", promhttp.Handler())
		health.New(checks...).Register(mux)
		server = &http.Server{Addr: cfg.Server.ListenAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server error", "err", err)
			}
		}()
		slog.Info("caption server listening", "addr", cfg.Server.ListenAddr)
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	if err := ctl.Start(ctx); err != nil {
		slog.Error("failed to start pipeline", "err", err)
		return 1
	}

	slog.Info("server ready — press Ctrl+C to shut down")
	<-ctx.Done()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	ctl.Stop()

	if server != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			slog.Warn("http shutdown error", "err", err)
		}
	}

	slog.Info("goodbye")
	return 0
}

// buildEngine constructs the ASR engine selected by cfg.ASR.Provider.
// Construction is cheap for both engines — model loading happens later on
// the inference goroutine via Engine.Load.
func buildEngine(cfg *config.Config) (asr.Engine, error) {
	switch cfg.ASR.Provider {
	case "whisper":
		var opts []whisper.Option
		if cfg.ASR.Model != "" {
			opts = append(opts, whisper.WithModel(cfg.ASR.Model))
		}
		if cfg.ASR.Timeout > 0 {
			opts = append(opts, whisper.WithTimeout(cfg.ASR.Timeout.Std()))
		}
		opts = append(opts, whisper.WithSampleRate(cfg.Audio.SampleRate))
		return whisper.New(cfg.ASR.ServerURL, opts...)

	case "whisper-native":
		return whisper.NewNative(cfg.ASR.ModelPath)

	default:
		return nil, fmt.Errorf("unknown asr provider %q", cfg.ASR.Provider)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         tarjama — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Mode", cfg.InitialMode)
	asrValue := cfg.ASR.Provider
	if cfg.ASR.Model != "" {
		asrValue += " / " + cfg.ASR.Model
	}
	printRow("ASR", asrValue)
	if cfg.Translate.BaseURL != "" {
		printRow("Translate", cfg.Translate.BaseURL)
	} else {
		printRow("Translate", "(passthrough)")
	}
	if cfg.Transcript.Dir != "" {
		printRow("Transcript", cfg.Transcript.Dir)
	} else {
		printRow("Transcript", "(disabled)")
	}
	printRow("Sample rate", fmt.Sprintf("%d Hz", cfg.Audio.SampleRate))
	if cfg.Server.ListenAddr != "" {
		printRow("Listen addr", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printRow(name, value string) {
	if len([]rune(value)) > 19 {
		value = string([]rune(value)[:16]) + "…"
	}
	fmt.Printf("║  %-15s : %-19s ║\n", name, value)
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
