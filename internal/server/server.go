package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/snonux/accentcoach/internal/coach"
	"codeberg.org/snonux/accentcoach/internal/feedback"
	"codeberg.org/snonux/accentcoach/internal/scoring"
	"codeberg.org/snonux/accentcoach/internal/server/middleware"
)

const shutdownTimeout = 10 * time.Second

// Config holds HTTP server settings
type Config struct {
	Addr           string
	MaxUploadBytes int64
}

// DefaultConfig listens on :8080 with a 10 MiB upload cap
func DefaultConfig() Config {
	return Config{Addr: ":8080", MaxUploadBytes: 10 << 20}
}

// Server serves the evaluation API
type Server struct {
	config   Config
	scorer   scoring.Provider
	profiles *feedback.Profiles
	coach    coach.Coach
	logger   *slog.Logger
	version  string
}

// Option configures optional collaborators
type Option func(*Server)

// WithCoach enables pronunciation tips for requests that ask for them
func WithCoach(c coach.Coach) Option {
	return func(s *Server) { s.coach = c }
}

// WithVersion sets the version reported by the health endpoint
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a server scoring recordings with scorer.
func New(config Config, scorer scoring.Provider, profiles *feedback.Profiles, logger *slog.Logger, opts ...Option) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   config,
		scorer:   scorer,
		profiles: profiles,
		logger:   logger.With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/evaluate", s.handleEvaluate)
	mux.HandleFunc("/api/classify", s.handleClassify)
	mux.HandleFunc("/health/live", s.handleLive)

	return middleware.Chain(
		middleware.RequestID,
		middleware.Logger(s.logger),
		middleware.Recovery(s.logger),
	)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.config.Addr), slog.String("scorer", s.scorer.Name()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
