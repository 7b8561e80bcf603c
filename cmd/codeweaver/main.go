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

	"github.com/codeweaver-dev/codeweaver/internal/adapter/export"
	cwhttp "github.com/codeweaver-dev/codeweaver/internal/adapter/http"
	"github.com/codeweaver-dev/codeweaver/internal/adapter/openai"
	cwotel "github.com/codeweaver-dev/codeweaver/internal/adapter/otel"
	"github.com/codeweaver-dev/codeweaver/internal/adapter/ristretto"
	"github.com/codeweaver-dev/codeweaver/internal/adapter/ws"
	"github.com/codeweaver-dev/codeweaver/internal/config"
	"github.com/codeweaver-dev/codeweaver/internal/logger"
	"github.com/codeweaver-dev/codeweaver/internal/middleware"
	"github.com/codeweaver-dev/codeweaver/internal/port/modelgateway"
	"github.com/codeweaver-dev/codeweaver/internal/resilience"
	"github.com/codeweaver-dev/codeweaver/internal/service"
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
		"code_provider", cfg.Providers.Code.Driver,
		"doc_provider", cfg.Providers.Doc.Driver,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownTelemetry, err := cwotel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := cwotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Gateways ---
	codeGW, err := newGateway(cfg.Providers.Code, cfg.Breaker)
	if err != nil {
		return fmt.Errorf("code gateway: %w", err)
	}
	docGW, err := newGateway(cfg.Providers.Doc, cfg.Breaker)
	if err != nil {
		return fmt.Errorf("doc gateway: %w", err)
	}
	if !codeGW.Configured() {
		slog.Warn("code provider has no API key; generation requests will be rejected",
			"provider", codeGW.Name())
	}
	if !docGW.Configured() {
		slog.Warn("doc provider has no API key; runs will degrade to code-only",
			"provider", docGW.Name())
	}

	// --- Services ---
	hub := ws.NewHub()
	orch := service.NewOrchestrator(
		service.NewCodeAgent(codeGW, cfg.Orchestrator.CodeTimeout),
		service.NewDocAgent(docGW, cfg.Orchestrator.DocTimeout),
		cfg.Orchestrator.MaxRetries,
		cfg.Orchestrator.MaxConcurrent,
		hub,
		metrics,
	)

	replayCache, err := ristretto.New(cfg.Idempotency.MaxSizeMB)
	if err != nil {
		return fmt.Errorf("idempotency cache: %w", err)
	}
	defer replayCache.Close()

	// --- HTTP ---
	handlers := &cwhttp.Handlers{
		Orchestrator: orch,
		Exporter:     export.NewDisk(cfg.Export.Dir),
		CodeGateway:  codeGW,
		DocGateway:   docGW,
	}

	r := chi.NewRouter()

	r.Use(cwhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(cwhttp.SecurityHeaders)
	r.Use(cwhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	ratelimiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopRateLimitCleanup := ratelimiter.StartCleanup(time.Minute, 10*time.Minute)
	defer stopRateLimitCleanup()
	r.Use(ratelimiter.Handler)
	r.Use(middleware.Idempotency(replayCache, cfg.Idempotency.HeaderName, cfg.Idempotency.TTL))

	r.Get("/health", handlers.HandleHealth)
	r.Get("/ws", hub.HandleWS)
	cwhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation runs span several provider calls with retries.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

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

// newGateway builds a provider gateway from config and attaches a circuit
// breaker to its transport.
func newGateway(p config.Provider, b config.Breaker) (modelgateway.Gateway, error) {
	gw, err := modelgateway.New(p.Driver, modelgateway.Settings{
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if c, ok := gw.(*openai.Client); ok {
		c.SetBreaker(resilience.NewBreaker(b.MaxFailures, b.Timeout))
	}
	return gw, nil
}
