// Package api serves the operational HTTP endpoints of the monitor:
// liveness, readiness and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/marketplace-monitor/internal/api/handlers"
	mw "github.com/donaldgifford/marketplace-monitor/internal/api/middleware"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Server is the echo server behind --metrics-addr.
type Server struct {
	echo *echo.Echo
	addr string
	log  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer builds the server. ready reports whether the monitor has a
// configuration.
func NewServer(addr string, st store.Store, ready func() bool, opts ...Option) *Server {
	s := &Server{addr: addr, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(mw.Recovery(s.log), mw.RequestLog(s.log), mw.Metrics())

	health := handlers.NewHealthHandler(st, ready)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo = e
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on the configured address until ctx ends, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.echo.Listener = ln
	s.log.Info("metrics server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down metrics server: %w", err)
	}
	s.log.Info("metrics server stopped")
	return nil
}
