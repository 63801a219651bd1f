// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/gatehouse/internal/platform/access"
	"github.com/taibuivan/gatehouse/internal/platform/config"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/metrics"
	"github.com/taibuivan/gatehouse/internal/platform/middleware"
	"github.com/taibuivan/gatehouse/internal/platform/sanitize"
	"github.com/taibuivan/gatehouse/internal/replay"
	"github.com/taibuivan/gatehouse/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all dependencies are healthy.
	Readiness http.HandlerFunc

	// Auth handles the credential lifecycle routes under /api/auth.
	Auth *auth.Handler

	// Replay serves the explicit replay token endpoint.
	Replay *replay.Handler

	// Pages serves the gated page stubs and /api/user.
	Pages *PageHandler
}

// Guards groups the request-level protections applied before routing.
type Guards struct {
	// Credentials verifies the session cookie for the request gate.
	Credentials middleware.CredentialVerifier

	// Policy classifies paths as public or protected.
	Policy access.Policy

	// Replay enforces replay tokens on ReplayPrefixes.
	Replay         *replay.Guard
	ReplayPrefixes []string

	// Throttle is the global per-IP token bucket.
	Throttle *middleware.Throttle

	// Sanitizer cleans JSON bodies on ReplayPrefixes.
	Sanitizer *sanitize.Sanitizer
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, guards Guards, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.CanonicalPath())
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg))
	r.Use(guards.Throttle.Middleware)

	// # Access Control
	// Gate first, then replay tokens and body hygiene on state-changing routes.
	r.Use(middleware.Gate(guards.Credentials, middleware.GateOptions{
		Policy:        guards.Policy,
		LoginPath:     cfg.LoginPath,
		SecureCookies: cfg.IsProduction(),
	}))
	r.Use(replay.Protect(guards.Replay, guards.ReplayPrefixes))
	r.Use(sanitize.Middleware(guards.Sanitizer, guards.ReplayPrefixes))

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", metrics.Handler())

	// # Pages
	r.Get("/", h.Pages.Index)
	r.Get("/profile", h.Pages.Page("profile"))
	r.Get("/dashboard", h.Pages.Page("dashboard"))
	r.Get("/settings", h.Pages.Page("settings"))

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(authRouter chi.Router) {
			authRouter.Mount("/csrf", h.Replay.Routes())
			authRouter.Mount("/", h.Auth.Routes())
		})
		api.Mount("/user", h.Pages.UserRoutes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the fully wired router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
