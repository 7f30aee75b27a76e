// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Shopii HTTP API server.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables (and .env).
//  2. Initialize the structured logger.
//  3. Install tracing.
//  4. Connect to PostgreSQL (pgxpool) and run migrations.
//  5. Connect to Redis.
//  6. Build security primitives and the notification publisher.
//  7. Wire repositories, services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/shopii/internal/admin"
	"github.com/taibuivan/shopii/internal/api"
	"github.com/taibuivan/shopii/internal/platform/config"
	"github.com/taibuivan/shopii/internal/platform/constants"
	"github.com/taibuivan/shopii/internal/platform/logger"
	"github.com/taibuivan/shopii/internal/platform/migration"
	"github.com/taibuivan/shopii/internal/platform/network"
	"github.com/taibuivan/shopii/internal/platform/notify"
	pgstore "github.com/taibuivan/shopii/internal/platform/postgres"
	redisstore "github.com/taibuivan/shopii/internal/platform/redis"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/platform/telemetry"
	"github.com/taibuivan/shopii/internal/users/account"
	"github.com/taibuivan/shopii/internal/users/auth"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failure: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log, zapLogger, err := logger.New(logger.Options{
		Environment: cfg.Environment,
		Format:      cfg.LogFormat,
		Debug:       cfg.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failure: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for background workers; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// A 30s deadline catches misconfiguration quickly rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Tracing ────────────────────────────────────────────────────────
	tracing, err := telemetry.Init(startupCtx, telemetry.Config{
		Enabled:        cfg.OtelEnabled,
		ServiceName:    constants.AppName,
		ServiceVersion: constants.AppVersion,
		Environment:    cfg.Environment,
		CollectorAddr:  cfg.OtelCollectorAddr,
	})
	must(log, err, "initialize tracing")
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			log.Error("tracing_shutdown_error", slog.Any("error", err))
		}
	}()

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 6. Security & Notifications ───────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	authenticator := sec.NewTOTP(cfg.TOTPIssuer)

	policy, err := network.NewPolicy(cfg.AdminIPAllowlist)
	must(log, err, "parse admin ip allow-list")

	var publisher notify.Publisher = notify.NewLogPublisher(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaNotificationTopic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("kafka_close_error", slog.Any("error", err))
			}
		}()
		publisher = kafkaPublisher
		log.Info("notifications_via_kafka", slog.String("topic", cfg.KafkaNotificationTopic))
	}

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	accountRepository := auth.NewAccountRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	userRepository := admin.NewUserRepository(pool)

	authService := auth.NewService(accountRepository, resetTokenRepository, tokens, authenticator, publisher, auth.Options{
		TrustedDeviceTTL: cfg.TrustedDeviceTTL(),
		ResetURL:         cfg.PasswordResetURL,
	})
	accountService := account.NewService(accountRepository, publisher, log)
	adminService := admin.NewService(accountRepository, userRepository, authService, publisher)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.IsProduction(), cfg.TrustedDeviceTTL()),
		Account:   account.NewHandler(accountService, authService),
		Admin:     admin.NewHandler(adminService, authService, !cfg.IsProduction()),
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, api.Dependencies{
		Config:  cfg,
		Logger:  log,
		Policy:  policy,
		Tracing: tracing.TracerProvider(),
	}, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Limited to startup wiring. After startup, all errors are returned and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
