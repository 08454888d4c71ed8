// Package rest exposes the batch operations over HTTP: running a job now,
// resuming stuck runs, inspecting instruction history, and reversing a
// transfer. Scheduling itself is left to an external trigger calling these
// endpoints.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// JobRunner triggers an immediate execution of a registered job
type JobRunner interface {
	RunNow(ctx context.Context, name string) (uuid.UUID, error)
}

// StuckJobResumer restarts runs of a job classified as stuck
type StuckJobResumer interface {
	ResumeStuckJob(ctx context.Context, jobName string) error
}

// TransferReverser voids a completed account transfer
type TransferReverser interface {
	Reverse(ctx context.Context, transferID uuid.UUID) error
}

// Server is the HTTP server for batch operations
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	runner   JobRunner
	resumer  StuckJobResumer
	reverser TransferReverser
	history  domain.InstructionHistoryRepository
}

// New creates a new HTTP server
func New(port int, log zerolog.Logger, runner JobRunner, resumer StuckJobResumer, reverser TransferReverser, history domain.InstructionHistoryRepository) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      log.With().Str("component", "http_server").Logger(),
		runner:   runner,
		resumer:  resumer,
		reverser: reverser,
		history:  history,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/jobs/{name}", func(r chi.Router) {
			r.Post("/run", s.handleRunJob)
			r.Post("/resume", s.handleResumeJob)
		})
		r.Get("/instructions/{id}/history", s.handleInstructionHistory)
		r.Post("/transfers/{id}/reverse", s.handleReverseTransfer)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
