package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wareworks/internal/csrf"
	csrfstore "wareworks/internal/csrf/store"
	"wareworks/internal/notify"
	"wareworks/internal/pdf"
	"wareworks/internal/platform/config"
	"wareworks/internal/platform/logger"
	"wareworks/internal/platform/metrics"
	"wareworks/internal/platform/sweeper"
	"wareworks/internal/ratelimit/checker"
	ratelimitconfig "wareworks/internal/ratelimit/config"
	ratelimitmiddleware "wareworks/internal/ratelimit/middleware"
	"wareworks/internal/ratelimit/store/window"
	"wareworks/internal/sheets"
	"wareworks/internal/storage"
	"wareworks/internal/submission/handler"
	"wareworks/internal/submission/service"
	"wareworks/internal/submission/store"
	"wareworks/internal/submission/token"
	httptransport "wareworks/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	log.Info("initializing wareworks intake service",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"pdf_generation", cfg.Features.PDFGeneration,
		"email_notifications", cfg.Features.EmailNotifications,
		"google_sheets", cfg.Features.GoogleSheets,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rate limit windows: Redis when configured, in-memory otherwise.
	limitCfg := ratelimitconfig.FromEnv()
	var windows checker.WindowStore
	if cfg.Redis.URL != "" {
		redisWindows, err := window.NewRedisWindowStore(cfg.Redis.URL)
		if err != nil {
			log.Error("redis window store setup failed", "error", err)
			os.Exit(1)
		}
		windows = redisWindows
		log.Info("rate limit windows backed by redis")
	} else {
		memWindows := window.NewInMemoryWindowStore()
		windows = memWindows
		go runSweeper(ctx, "rate_limit_windows", memWindows, limitCfg.SweepInterval, m, log)
	}

	limiter, err := checker.New(windows,
		checker.WithConfig(limitCfg),
		checker.WithLogger(log),
		checker.WithMetrics(m))
	if err != nil {
		log.Error("rate limiter setup failed", "error", err)
		os.Exit(1)
	}

	tokenStore := csrfstore.New()
	guard, err := csrf.New(tokenStore,
		csrf.WithLogger(log),
		csrf.WithTokenTTL(cfg.CSRF.TokenTTL),
		csrf.WithNames(cfg.CSRF.HeaderName, cfg.CSRF.CookieName),
		csrf.WithMetrics(m))
	if err != nil {
		log.Error("csrf guard setup failed", "error", err)
		os.Exit(1)
	}
	go runSweeper(ctx, "csrf_tokens", tokenStore, 10*time.Minute, m, log)

	filler := pdf.NewFiller(cfg.Templates, pdf.WithLogger(log), pdf.WithMetrics(m))
	if cfg.Features.PDFGeneration {
		if err := filler.CheckTemplates(); err != nil {
			if cfg.IsDevelopment() {
				log.Error("pdf template check failed", "error", err)
				os.Exit(1)
			}
			log.Warn("pdf template check failed, submissions will use the synthesized fallback", "error", err)
		}
	}

	dispatcher := notify.NewDispatcher(cfg.Email, log)
	log.Info("notification transport selected", "transport", dispatcher.Transport())

	appender, err := sheets.NewAppender(ctx, cfg.Sheets, log)
	if err != nil {
		log.Error("sheets appender setup failed", "error", err)
		os.Exit(1)
	}

	objectStore, err := storage.New(cfg.Storage, log)
	if err != nil {
		log.Error("object storage setup failed", "error", err)
		os.Exit(1)
	}
	if objectStore.Configured() {
		if err := objectStore.EnsureBucket(ctx); err != nil {
			log.Error("object storage bucket check failed", "error", err)
			os.Exit(1)
		}
	}

	documents := store.NewInMemoryDocumentStore(cfg.Download.DocumentTTL)
	go runSweeper(ctx, "generated_documents", documents, 10*time.Minute, m, log)

	svc := service.New(
		filler,
		dispatcher,
		appender,
		documents,
		token.NewIssuer(cfg.Download.SigningKey, cfg.Download.DocumentTTL),
		cfg.Features,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithArchiver(objectStore),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Submission: handler.NewHandler(svc, log),
		Config: handler.NewConfigHandler(handler.ConfigFeatures{
			PDFGeneration:      cfg.Features.PDFGeneration,
			EmailNotifications: cfg.Features.EmailNotifications,
			GoogleSheets:       cfg.Features.GoogleSheets,
		}, limitCfg, cfg.Languages, cfg.AllowedOrigins, log),
		CSRF:      csrf.NewHandler(guard, cfg.CSRF.SecureCookie, log),
		CSRFGuard: guard,
		Uploads:   storage.NewHandler(objectStore, log),
		RateLimit: ratelimitmiddleware.New(limiter, log),
		Metrics:   m,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func runSweeper(ctx context.Context, name string, st sweeper.Store, interval time.Duration, m *metrics.Metrics, log *slog.Logger) {
	s := sweeper.New(name, st,
		sweeper.WithLogger(log),
		sweeper.WithInterval(interval),
		sweeper.WithMetrics(m))
	if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("sweeper stopped", "sweeper", name, "error", err)
	}
}
