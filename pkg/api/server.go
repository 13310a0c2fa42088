package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/yourusername/gomokuengine/pkg/engine"
	"github.com/yourusername/gomokuengine/pkg/store"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host           string        // Host to bind to (default "localhost")
	Port           int           // Port to listen on (default 8080)
	ReadTimeout    time.Duration // Read timeout (default 30s)
	WriteTimeout   time.Duration // Write timeout (default 60s)
	IdleTimeout    time.Duration // Idle timeout (default 60s)
	MaxFastWorkers int           // Max concurrent fast operations (default 100)
	MaxSlowWorkers int           // Max concurrent searches (default 4)
	DefaultDepth   int           // Search depth when a request names none (default 2)
	MaxDepth       int           // Deepest search a request may ask for (default 4)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
		DefaultDepth:   DefaultSearchDepth,
		MaxDepth:       DefaultMaxDepth,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
	log      zerolog.Logger
}

// NewServer creates a new API server. st may be nil to disable storage.
func NewServer(e *engine.MinimaxEngine, st *store.Store, config ServerConfig, version string, logger zerolog.Logger) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: config.MaxFastWorkers,
		MaxSlowWorkers: config.MaxSlowWorkers,
	})
	handlers := NewHandlersWithPool(e, version, pool).
		WithStore(st).
		WithDepthLimits(config.DefaultDepth, config.MaxDepth).
		WithLogger(logger)

	return &Server{
		config:   config,
		handlers: handlers,
		pool:     pool,
		version:  version,
		log:      logger,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests.
func loggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// Handler returns the routed HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/api/health", s.handlers.Health)
	r.Post("/api/legal", s.handlers.Legal)
	r.Post("/api/apply", s.handlers.Apply)
	r.Post("/api/evaluate", s.handlers.Evaluate)
	r.Post("/api/best", s.handlers.Best)
	r.Post("/api/analyze", s.handlers.Analyze)
	r.Get("/api/analyze/stream", s.handlers.AnalyzeSSE)
	r.Post("/api/review", s.handlers.Review)
	r.Get("/api/analyses", s.handlers.ListAnalyses)
	r.Get("/api/analyses/{id}", s.handlers.GetAnalysis)
	r.Get("/api/ws", s.handlers.WebSocket)

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.log.Info().
		Str("version", s.version).
		Str("addr", addr).
		Int("max_depth", s.handlers.maxDepth).
		Bool("storage", s.handlers.store != nil).
		Msg("starting gomoku search server")
	s.log.Info().Msg("endpoints: GET /api/health, POST /api/legal, POST /api/apply, POST /api/evaluate, " +
		"POST /api/best, POST /api/analyze, GET /api/analyze/stream, GET /api/analyses[/{id}], WS /api/ws")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	// Channel to listen for errors from server
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until signal or error
	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.log.Info().Stringer("signal", sig).Msg("shutting down")
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("server stopped gracefully")
	return nil
}
