// Copyright (c) 2026 Shopii. All rights reserved.
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
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/shopii/internal/admin"
	"github.com/taibuivan/shopii/internal/platform/config"
	"github.com/taibuivan/shopii/internal/platform/constants"
	"github.com/taibuivan/shopii/internal/platform/middleware"
	"github.com/taibuivan/shopii/internal/platform/network"
	"github.com/taibuivan/shopii/internal/platform/telemetry"
	"github.com/taibuivan/shopii/internal/users/account"
	"github.com/taibuivan/shopii/internal/users/auth"
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
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 only when every dependency answers.
	Readiness http.HandlerFunc

	// Auth handles registration, login, step-up and password reset.
	Auth *auth.Handler

	// Account handles the caller's own profile under the same /api/auth prefix.
	Account *account.Handler

	// Admin handles back-office user management and reports.
	Admin *admin.Handler
}

// Dependencies are the cross-cutting collaborators of the middleware chain.
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Policy  *network.Policy
	Tracing trace.TracerProvider
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. ctx bounds the rate limiter's janitor goroutine.
func NewServer(ctx context.Context, deps Dependencies, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(telemetry.Middleware(deps.Tracing))
	r.Use(middleware.ResolveOrigin(deps.Policy))
	r.Use(middleware.StructuredLogger(deps.Logger))
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(deps.Config.AllowedOrigins()))
	r.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		authRoutes := h.Auth.Routes()
		h.Account.Attach(authRoutes)
		api.Mount("/auth", authRoutes)

		api.Mount("/admin", h.Admin.Routes())
	})

	return &Server{
		router: r,
		log:    deps.Logger,
		httpServer: &http.Server{
			Addr:              ":" + deps.Config.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the root router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
