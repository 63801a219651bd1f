// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the gatehouse HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis when configured.
//  4. Build the account store and credential service.
//  5. Load the gate policy.
//  6. Wire HTTP handlers and guards.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/gatehouse/internal/api"
	"github.com/taibuivan/gatehouse/internal/platform/access"
	"github.com/taibuivan/gatehouse/internal/platform/config"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/middleware"
	redisstore "github.com/taibuivan/gatehouse/internal/platform/redis"
	"github.com/taibuivan/gatehouse/internal/platform/sanitize"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/ratelimit"
	"github.com/taibuivan/gatehouse/internal/replay"
	"github.com/taibuivan/gatehouse/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("user_store", cfg.UserStore),
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	} else {
		log.Info("redis_not_configured_using_memory_stores")
	}

	var replayStore replay.Store = replay.NewMemoryStore()
	var limitStore ratelimit.Store = ratelimit.NewMemoryStore(cfg.RateLimitCacheSize, cfg.RateLimitWindow)
	if rdb != nil {
		replayStore = replay.NewRedisStore(rdb)
		limitStore = ratelimit.NewRedisStore(rdb)
	}

	// ── 4. Accounts and Credentials ───────────────────────────────────────
	var userRepository auth.UserRepository
	switch cfg.UserStore {
	case config.UserStoreEnv:
		userRepository = auth.NewEnvUserRepository(cfg.AuthUsername, cfg.AuthPasswordHash, cfg.AuthUserID)
	default:
		userRepository = auth.NewFileUserRepository(cfg.UserFile)
	}

	credentials, err := sec.NewCredentialService(cfg.JWTSecret, cfg.JWTExpiresIn.Duration())
	must(log, err, "initialize credential service")

	// ── 5. Gate Policy ────────────────────────────────────────────────────
	policy := access.DefaultPolicy()
	if cfg.GatePolicyFile != "" {
		policy, err = access.Load(cfg.GatePolicyFile)
		must(log, err, "load gate policy")
	}
	if cfg.GateDefaultDeny {
		policy.DefaultDeny = true
	}
	if !policy.DefaultDeny {
		log.Warn("gate_default_allow", slog.String("hint", "unlisted paths are public; set GATE_DEFAULT_DENY=true to invert"))
	}

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	dependencies := api.HealthDependencies{CheckUserStore: userRepository.Check}
	if rdb != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(userRepository, credentials)
	limiter := ratelimit.New(limitStore, cfg.RateLimitWindow)
	authHandler := auth.NewHandler(authService, limiter, cfg.IsProduction())

	guard := replay.NewGuard(replayStore,
		replay.WithWindow(cfg.CSRFExpiry),
		replay.WithSingleUse(cfg.CSRFSingleUse),
	)

	throttle := middleware.NewThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst)
	go throttle.Run(rootCtx)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	guards := api.Guards{
		Credentials:    credentials,
		Policy:         policy,
		Replay:         guard,
		ReplayPrefixes: replay.DefaultProtectedPrefixes(),
		Throttle:       throttle,
		Sanitizer:      sanitize.New(),
	}

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Replay:    replay.NewHandler(guard),
		Pages:     api.NewPageHandler(),
	}

	server := api.NewServer(cfg, log, guards, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
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
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	rootCancel()
	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
