// Package server exposes the planning pipeline over HTTP.
//
// # Endpoints
//
//	POST /api/plan        compute a plan and persist it
//	GET  /api/plan        list recent plans
//	GET  /api/plan/{id}   fetch a stored plan
//	GET  /healthz         liveness probe
//
// Plan requests are pipeline.Options JSON bodies; runtime-only fields
// (catalog, engine, logger) are not part of the wire format and every
// request plans against the server's configured catalog.
//
// Every request gets a UUID request ID, echoed in the X-Request-ID header
// and attached to all log lines for the request.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flowplan/flowplan/pkg/pipeline"
	"github.com/flowplan/flowplan/pkg/store"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Runner executes the planning pipeline.
	Runner *pipeline.Runner

	// Store persists computed plans.
	Store store.Store

	// Logger receives request and error logs. Defaults to log.Default().
	Logger *log.Logger

	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration
}

// Server is the HTTP API server.
type Server struct {
	cfg    Config
	router chi.Router
	logger *log.Logger
}

// New creates a server and mounts all routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/plan", func(r chi.Router) {
		r.Post("/", s.handlePlanCreate)
		r.Get("/", s.handlePlanList)
		r.Get("/{id}", s.handlePlanGet)
	})

	s.router = r
	return s
}

// Handler returns the mounted router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
