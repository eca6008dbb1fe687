// Package server exposes a store.Backend over the JSON HTTP API used by
// the remote client.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/abhisek/timestables/internal/api"
	"github.com/abhisek/timestables/internal/store"
)

// Server is the HTTP front of a backend.
type Server struct {
	backend  store.Backend
	log      *zap.Logger
	registry *prometheus.Registry
	mode     string
	ping     func(context.Context) error
	now      func() time.Time

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithRegistry sets the registry serving /metrics. Extra collectors can
// be registered on it by the caller.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// WithMode sets the gin mode: "debug", "release" or "test".
func WithMode(mode string) Option {
	return func(s *Server) {
		s.mode = mode
	}
}

// WithPing sets the health probe behind /api/health.
func WithPing(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.ping = fn
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New builds the server and its routes.
func New(backend store.Backend, opts ...Option) (*Server, error) {
	s := &Server{
		backend: backend,
		log:     zap.NewNop(),
		mode:    gin.ReleaseMode,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	m, err := newMetrics(s.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	gin.SetMode(s.mode)
	r := gin.New()
	r.Use(recovery(s.log), requestLogger(s.log), m.middleware(), cors())

	r.GET("/metrics", metricsHandler(s.registry))
	r.GET(api.PathHealth, s.health)
	r.POST(api.PathSessions, s.createSession)
	r.PUT(api.PathSessions+"/:id", s.endSession)
	r.POST(api.PathAnswers, s.logAnswer)
	r.GET(api.PathStudents, s.listStudents)
	r.GET(api.PathStudents+"/:name", s.getStudent)
	r.GET(api.PathLeaderboard, s.leaderboard)

	s.engine = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
