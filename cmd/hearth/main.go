package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Strob0t/Hearth/internal/adapter/hass"
	hhttp "github.com/Strob0t/Hearth/internal/adapter/http"
	hnats "github.com/Strob0t/Hearth/internal/adapter/nats"
	"github.com/Strob0t/Hearth/internal/adapter/ollama"
	"github.com/Strob0t/Hearth/internal/adapter/openaicompat"
	hotel "github.com/Strob0t/Hearth/internal/adapter/otel"
	"github.com/Strob0t/Hearth/internal/adapter/postgres"
	"github.com/Strob0t/Hearth/internal/adapter/ristretto"
	"github.com/Strob0t/Hearth/internal/adapter/ws"
	"github.com/Strob0t/Hearth/internal/config"
	"github.com/Strob0t/Hearth/internal/expert/calendarx"
	"github.com/Strob0t/Hearth/internal/expert/journalx"
	"github.com/Strob0t/Hearth/internal/expert/lists"
	"github.com/Strob0t/Hearth/internal/expert/people"
	"github.com/Strob0t/Hearth/internal/expert/planner"
	"github.com/Strob0t/Hearth/internal/expert/reminders"
	"github.com/Strob0t/Hearth/internal/expert/smarthomex"
	"github.com/Strob0t/Hearth/internal/logger"
	"github.com/Strob0t/Hearth/internal/port/eventbus"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/llm"
	"github.com/Strob0t/Hearth/internal/resilience"
	"github.com/Strob0t/Hearth/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"nats_enabled", cfg.NATS.Enabled,
		"telemetry_enabled", cfg.Telemetry.Enabled,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownTelemetry, err := hotel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// Event sinks: dashboard websocket hub always, NATS and metrics when enabled.
	hub := ws.NewHub()
	sinks := eventbus.Fanout{hub}

	if cfg.NATS.Enabled {
		bus, err := hnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = bus.Close() }()
		sinks = append(sinks, bus)
		slog.Info("nats connected", "url", cfg.NATS.URL)
	}

	var metrics *hotel.Metrics
	if cfg.Telemetry.Enabled {
		metrics, err = hotel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		sinks = append(sinks, hotel.NewBus(metrics))
	}

	narrationCache, err := ristretto.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer narrationCache.Close()

	// --- Model backends ---
	backends := llm.NewRegistry()
	backends.Register(ollama.New(cfg.Models.Ollama.URL))
	backends.Register(openaicompat.New("cloud", cfg.Models.Cloud.URL, cfg.Models.Cloud.APIKey))

	// --- Experts ---
	store := postgres.NewStore(pool)
	bridge := hass.New(cfg.SmartHome.URL, cfg.SmartHome.Token)
	backoff := cfg.Orchestrator.RetryBackoff

	experts := expert.NewRegistry()
	experts.Register(lists.New(store, backoff))
	experts.Register(calendarx.New(store, backoff))
	experts.Register(reminders.New(store, backoff))
	experts.Register(smarthomex.New(bridge, backoff))
	experts.Register(people.New(store, backoff))
	experts.Register(journalx.New(store, backoff))
	experts.Register(planner.New(store, store, store, backoff))

	// --- Services ---
	sessions := service.NewSessionService(cfg.Orchestrator.HistoryLimit)
	classifier := service.NewClassifierService(experts, cfg.Classifier)
	breaker := resilience.NewWindowBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Window)
	router := service.NewRouterService(backends, cfg.Models, breaker, narrationCache, sinks)
	composer := service.NewComposerService(experts, sinks)
	orchestrator := service.NewOrchestratorService(sessions, classifier, experts, router, composer, sinks, hub, cfg.Orchestrator)

	// --- HTTP ---
	handlers := hhttp.NewHandlers(orchestrator, sessions, router, experts)

	r := chi.NewRouter()

	r.Use(hhttp.RequestID)
	r.Use(hhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(hhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Telemetry.Enabled {
		r.Use(hotel.HTTPMiddleware(cfg.Logging.Service))
		r.Use(hotel.RequestMetrics(metrics))
	}

	hhttp.MountRoutes(r, handlers, hub.HandleWS)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
