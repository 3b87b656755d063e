// Package server provides HTTP server management for the formulary API: router and middleware
// setup, route registration and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/giygas/nlem-api/config"
	"github.com/giygas/nlem-api/handlers"
	"github.com/giygas/nlem-api/interfaces"
	"github.com/giygas/nlem-api/logging"
	"github.com/giygas/nlem-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	handler     interfaces.HTTPHandler
	rateLimiter *RateLimiter
	config      *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:           router,
			Addr:              cfg.ListenAddr(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    int(cfg.MaxHeaderSize),
		},
		router:      router,
		handler:     handler,
		rateLimiter: NewRateLimiter(),
		config:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	// Forwarding headers are only trusted when every request comes through the proxy
	if s.config.RequireProxy {
		s.router.Use(BlockDirectAccessMiddleware) // Before RealIPMiddleware to see the original RemoteAddr
		s.router.Use(RealIPMiddleware)
	}
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLogger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.rateLimiter.Middleware)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handler.HealthCheck)
	s.router.Get("/health", s.handler.Readiness)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/drugs", func(r chi.Router) {
		r.Get("/search", s.handler.SearchDrugs)
		r.Get("/{id}", s.handler.FindDrugByID)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// RateLimiter returns the limiter so maintenance jobs can evict idle clients
func (s *Server) RateLimiter() *RateLimiter {
	return s.rateLimiter
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	logging.Info("Starting server", "address", s.server.Addr, "env", s.config.Env.String())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
