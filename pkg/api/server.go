package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the HTTP server and related dependencies.
type Server struct {
	logger *zap.Logger
	server *http.Server
	mux    *http.ServeMux
}

type ServerOptions struct {
	Port              int
	ReadHeaderTimeout time.Duration
}

// NewServer constructs a server with base routes and middleware wiring.
func NewServer(opts ServerOptions, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           loggingMiddleware(logger, mux),
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
	}

	return &Server{
		logger: logger,
		server: srv,
		mux:    mux,
	}
} // ./NewServer

// Run starts the HTTP server and blocks until it exits or errors.
func (s *Server) Run() error {
	s.logger.Info("server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
} // ./Run

// Shutdown gracefully stops the server within the provided context timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
} // ./Shutdown

// Mux exposes the underlying mux for route registration.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
} // ./Mux

// Handler is the full handler chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
} // ./Handler

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
} // ./WriteHeader

func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
} // ./loggingMiddleware
