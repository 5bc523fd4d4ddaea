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

	"github.com/aryan0dhankhar/reviewdesk/internal/featureflags"
	"github.com/aryan0dhankhar/reviewdesk/internal/handler"
	"github.com/aryan0dhankhar/reviewdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/reviewdesk/internal/mockapi"
	"github.com/aryan0dhankhar/reviewdesk/internal/observability/tracing"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/audit"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/auth"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/middleware"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/ratelimit"
	"github.com/aryan0dhankhar/reviewdesk/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting ReviewDesk dev server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for name, on := range featureflags.Snapshot() {
		log.Info("feature flag", slog.String("flag", name), slog.Bool("enabled", on))
	}

	// 3. Tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, tracing.Settings{
		ServiceName: "reviewdesk-server",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "reviewdesk")
	rateLimiter := ratelimit.NewLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	auditLogger := audit.NewLogger(log)
	clientIPs, err := middleware.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		log.Error("invalid TRUSTED_PROXIES", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := handler.ServerOptions{
		Limiter:        rateLimiter,
		ClientIPs:      clientIPs,
		Audit:          auditLogger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Checks:         map[string]handler.Checker{},
		Logger:         log,
	}
	if featureflags.Enabled(featureflags.RequireAuth) {
		opts.Tokens = tokenManager
	}

	// 5. Mock backend
	if cfg.MockEnabled {
		responder, err := mockapi.New(mockapi.Options{
			DelayScale: cfg.MockDelayScale,
			Tokens:     tokenManager,
			Directory:  auth.NewDirectory(),
			TokenTTL:   cfg.TokenTTL,
			EnableXLSX: featureflags.Enabled(featureflags.XLSXReports),
			Logger:     log,
		})
		if err != nil {
			log.Error("failed to initialize mock backend", slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts.Responder = responder
		opts.Checks["mock"] = handler.ResponderCheck(responder)

		for _, rt := range responder.Routes() {
			log.Debug("mock route",
				slog.String("name", rt.Name),
				slog.String("method", rt.Method),
				slog.String("path", rt.Path),
				slog.Duration("delay", rt.Delay),
			)
		}
	}

	// 6. Optional real backend for everything the mock does not answer
	if cfg.UpstreamURL != "" {
		upstream, check, err := handler.NewUpstreamProxy(cfg.UpstreamURL, handler.NewUpstreamBreaker(log), log)
		if err != nil {
			log.Error("failed to configure upstream", slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts.Upstream = upstream
		opts.Checks["upstream"] = check
	}

	// 7. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      handler.NewServer(opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("mock", cfg.MockEnabled),
		slog.Float64("mock_delay_scale", cfg.MockDelayScale),
		slog.Bool("require_auth", opts.Tokens != nil),
		slog.String("upstream", cfg.UpstreamURL),
		slog.Int("login_rate_limit", cfg.LoginRateLimit),
		slog.Duration("login_rate_window", cfg.LoginRateWindow),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	rateLimiter.Stop()
	log.Info("server stopped")
}
