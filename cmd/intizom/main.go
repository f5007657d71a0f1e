// Package main runs the Intizom API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intizom/intizom/internal/app"
	"github.com/intizom/intizom/internal/app/auth"
	"github.com/intizom/intizom/internal/app/httpapi"
	"github.com/intizom/intizom/internal/app/metrics"
	"github.com/intizom/intizom/internal/app/storage/postgres"
	"github.com/intizom/intizom/internal/config"
	"github.com/intizom/intizom/internal/middleware"
	"github.com/intizom/intizom/internal/platform/database"
	"github.com/intizom/intizom/internal/platform/migrations"
	"github.com/intizom/intizom/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("main").WithError(err).Error("load configuration")
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: "stdout",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stores app.Stores
	if cfg.DBDriver == "postgres" {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Error("connect to database")
			os.Exit(1)
		}
		defer db.Close()
		if err := migrations.Apply(ctx, db); err != nil {
			log.WithError(err).Error("apply migrations")
			os.Exit(1)
		}
		store := postgres.New(db)
		stores = app.Stores{
			Users:         store,
			Habits:        store,
			Tasks:         store,
			Goals:         store,
			Finance:       store,
			Principles:    store,
			Notifications: store,
		}
		log.Info("using postgres storage")
	} else {
		log.Info("using in-memory storage")
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	application, err := app.New(stores, app.Options{
		Tokens:        tokens,
		TrialDays:     cfg.TrialDays,
		SweepSchedule: cfg.SweepSchedule,
	}, log.WithField("component", "app"))
	if err != nil {
		log.WithError(err).Error("build application")
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("start application services")
		os.Exit(1)
	}

	features := config.LoadFeaturesOrDefault()
	router := httpapi.NewHandler(application, features, log.WithField("component", "httpapi"))

	authmw := middleware.NewAuthMiddleware(tokens, log.WithField("component", "auth"), httpapi.SkipAuthPaths())
	ratelimit := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log.WithField("component", "ratelimit"))
	ratelimit.StartCleanup(10 * time.Minute)
	cors := middleware.NewCORSMiddleware(cfg.CORSOrigins)

	handler := metrics.InstrumentHandler(cors.Handler(authmw.Handler(ratelimit.Handler(router))))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("application stop")
	}
	log.Info("stopped")
}
