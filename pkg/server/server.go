package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"cloudspend-hq/warden/pkg/config"
	"cloudspend-hq/warden/pkg/governor"
	"cloudspend-hq/warden/pkg/telemetry/health"
)

// GovernorAPI is the surface the HTTP layer needs from the governor.
type GovernorAPI interface {
	RunCycle(ctx context.Context) (*governor.Summary, error)
	Reset(ctx context.Context, serviceKey string) (*governor.ResetResult, error)
	Enable(ctx context.Context, resourceID string) error
	ServiceStatus(ctx context.Context, serviceKey string) (*governor.StatusView, error)
	AllStatuses(ctx context.Context) []governor.StatusView
}

// Server is the Warden control-plane HTTP server.
type Server struct {
	config   *config.ServerConfig
	governor GovernorAPI
	checker  *health.Checker
	metrics  http.Handler
	logger   *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
}

// New creates the HTTP server. metricsHandler may be nil when metrics are
// disabled.
func New(cfg *config.ServerConfig, gov GovernorAPI, checker *health.Checker, metricsHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default().With("component", "server")
	}
	return &Server{
		config:   cfg,
		governor: gov,
		checker:  checker,
		metrics:  metricsHandler,
		logger:   logger,
	}
}

// Start runs the server and blocks until the context is cancelled, a
// shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			err = fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
			return
		}
		s.logger.Info("http server stopped")
	})
	return err
}

// routes builds the request mux with the middleware chain applied.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /check", s.handleCheck)
	mux.HandleFunc("POST /reset/{service}", s.handleReset)
	mux.HandleFunc("POST /enable_service/{api}", s.handleEnable)
	mux.HandleFunc("GET /status", s.handleAllStatuses)
	mux.HandleFunc("GET /status/{service}", s.handleServiceStatus)

	mux.HandleFunc("GET /health", s.checker.LivenessHandler())
	mux.HandleFunc("GET /health/ready", s.checker.ReadinessHandler())
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	return chain(mux,
		s.recoverPanics,
		s.logRequests,
		requestID,
	)
}
