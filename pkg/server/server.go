package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/restql/pkg/config"
	"mercator-hq/restql/pkg/gateway"
	"mercator-hq/restql/pkg/proxy/middleware"
	"mercator-hq/restql/pkg/telemetry/health"
	"mercator-hq/restql/pkg/telemetry/metrics"
)

// Options holds the collaborators of a Server.
type Options struct {
	Config  *config.Config
	Routes  *gateway.RouteTable
	Client  *gateway.Client
	Metrics *metrics.Collector
	Version health.VersionInfo
}

// Server is the HTTP server of the gateway.
type Server struct {
	config     *config.CommonConfig
	routes     *gateway.RouteTable
	client     *gateway.Client
	collector  *metrics.Collector
	checker    *health.Checker
	version    health.VersionInfo
	httpServer *http.Server
	listener   net.Listener

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Nothing is bound until Listen.
func New(opts Options) *Server {
	s := &Server{
		config:    &opts.Config.Common,
		routes:    opts.Routes,
		client:    opts.Client,
		collector: opts.Metrics,
		checker:   health.New(0),
		version:   opts.Version,
	}
	s.registerChecks()

	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout.Std(),
		WriteTimeout:   s.config.WriteTimeout.Std(),
		IdleTimeout:    s.config.IdleTimeout.Std(),
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
	}
	return s
}

// registerChecks installs the readiness checks: at least one route is
// configured and the GraphQL service is reachable.
func (s *Server) registerChecks() {
	s.checker.RegisterCheck("routes", func(context.Context) error {
		if s.routes == nil || s.routes.Len() == 0 {
			return errors.New("no routes configured")
		}
		return nil
	})
	if s.client == nil {
		return
	}
	s.checker.RegisterCheck("upstream", func(ctx context.Context) error {
		err := s.client.Ping(ctx)
		s.collector.UpdateUpstreamHealth(err == nil)
		return err
	})
}

// Handler returns the complete handler: ops endpoints, the metrics
// endpoint when enabled and the gateway routes, wrapped in the middleware
// chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	health.Register(mux, s.checker, config.HealthPath, config.ReadyPath, config.VersionPath, s.version)
	if s.config.Metrics.Enabled && s.collector != nil {
		mux.Handle("GET "+s.config.Metrics.Path, s.collector.Handler())
	}
	if s.routes != nil {
		mux.Handle("/", s.routes)
	}

	return middleware.Chain(mux)
}

// Listen binds the configured listen address. A bind failure is fatal for
// startup and is returned before anything is served.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.config.Listen, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve serves on the bound listener until ctx is canceled, then shuts
// down gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return errors.New("server is not listening")
	}
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.isRunning = true
	ln := s.listener
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", ln.Addr().String(),
			"routes", s.routeCount(),
			"upstream", s.upstreamURL(),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown gracefully shuts down the server. It is safe to call more than
// once; only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		timeout := s.config.ShutdownTimeout.Std()
		slog.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
		if s.client != nil {
			s.client.Close()
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

func (s *Server) routeCount() int {
	if s.routes == nil {
		return 0
	}
	return s.routes.Len()
}

func (s *Server) upstreamURL() string {
	if s.client == nil {
		return ""
	}
	return s.client.URL()
}
