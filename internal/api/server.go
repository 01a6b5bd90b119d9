// Package api provides the HTTP REST surface: chat endpoints backed by
// the session registry, and direct CRUD endpoints for tasks and notes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ownplanner/ownplanner/internal/chat"
	"github.com/ownplanner/ownplanner/internal/planner"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to mitigate slow clients.
	ReadHeaderTimeout = 10 * time.Second
	ReadTimeout       = 30 * time.Second
	// WriteTimeout is generous because chat turns can run several tool
	// rounds against the model.
	WriteTimeout = 120 * time.Second
	IdleTimeout  = 120 * time.Second
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr     string
	Sessions *chat.Registry
	Tasks    *planner.TaskService
	Notes    *planner.NoteService
	// CORSOrigins lists allowed origins; "*" admits any.
	CORSOrigins []string
	// RateLimit is tokens per second per client IP; RateBurst the bucket
	// size. Zero disables rate limiting.
	RateLimit float64
	RateBurst int
	Logger    *slog.Logger
}

// Server is the HTTP server for the planner's REST API.
type Server struct {
	mux    *http.ServeMux
	cfg    ServerConfig
	logger *slog.Logger
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("api: session registry is required")
	}
	if cfg.Tasks == nil || cfg.Notes == nil {
		return nil, errors.New("api: task and note services are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{mux: mux, cfg: cfg, logger: cfg.Logger}

	newHealthHandler().register(mux)
	newChatHandler(cfg.Sessions, cfg.Logger).register(mux)
	newTaskHandler(cfg.Tasks).register(mux)
	newNoteHandler(cfg.Notes).register(mux)

	return s, nil
}

// Handler returns the HTTP handler with middleware applied.
// Order: recovery, logging, CORS, then rate limiting.
func (s *Server) Handler() http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		corsMiddleware(s.cfg.CORSOrigins),
	}
	if s.cfg.RateLimit > 0 {
		rl := newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst)
		middlewares = append(middlewares, rateLimitMiddleware(rl, s.logger))
	}
	return chain(s.mux, middlewares...)
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// defaultUserID is used when a request does not identify its user.
const defaultUserID = "default"

// requestUser resolves the user a request acts for.
func requestUser(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}
