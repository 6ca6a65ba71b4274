// Package server exposes the bot's read-only HTTP API, Prometheus metrics and
// the live WebSocket stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/server/handler"
	"github.com/alanyoungcy/ocobot/internal/server/middleware"
	"github.com/alanyoungcy/ocobot/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimit caps requests per client IP per RateWindow when a limiter is
	// supplied.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates the HTTP handlers the server registers. Runs and
// Orders may be nil when no database is configured.
type Handlers struct {
	Health *handler.HealthHandler
	Status *handler.StatusHandler
	Runs   *handler.RunHandler
	Orders *handler.OrderHandler
}

// Server is the headless HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered. wsHub and limiter
// are optional.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	logger = logger.With(slog.String("component", "http_server"))
	mux := http.NewServeMux()

	// Health is reachable without a token.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	if handlers.Runs != nil {
		mux.HandleFunc("GET /api/runs", handlers.Runs.ListRuns)
	}
	if handlers.Orders != nil {
		mux.HandleFunc("GET /api/orders", handlers.Orders.ListOrders)
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey, "/api/health")(h)
	if limiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateWindow, logger)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on ln until the server is shut down.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting", slog.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: serve: %w", err)
	}
	return nil
}

// Run listens on the configured port and serves until ctx is cancelled, then
// shuts down gracefully within shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
