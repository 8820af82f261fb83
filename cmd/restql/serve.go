package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"mercator-hq/restql/pkg/cli"
	"mercator-hq/restql/pkg/config"
	"mercator-hq/restql/pkg/gateway"
	"mercator-hq/restql/pkg/server"
	"mercator-hq/restql/pkg/telemetry/health"
	"mercator-hq/restql/pkg/telemetry/logging"
	"mercator-hq/restql/pkg/telemetry/metrics"
	"mercator-hq/restql/pkg/telemetry/tracing"
)

const upstreamProbeTimeout = 2 * time.Second

// serve builds the gateway from the published process configuration, binds
// the listener and serves until ctx is canceled. Any error before the
// listener is bound aborts startup.
func serve(ctx context.Context, out io.Writer) error {
	cfg := config.MustGetConfig()

	logger, err := logging.Setup(cfg.Common.Logging, os.Stderr)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	collector := metrics.NewCollector(&cfg.Common.Metrics, nil)

	tracer, err := tracing.New(&cfg.Common.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		timeout := cfg.Common.ShutdownTimeout.Std()
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shut down tracer", "error", err)
		}
	}()

	client, err := gateway.NewClient(&cfg.Common, tracer)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	gw := gateway.New(client, gateway.Options{
		Metrics:      collector,
		Tracer:       tracer,
		MaxBodyBytes: cfg.Common.MaxBodyBytes,
	})
	routes, err := gateway.NewRouteTable(cfg, gw)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	for _, route := range routes.Routes() {
		logger.Debug("registered route",
			"pattern", route.Pattern,
			"pq_id", route.Endpoint.PersistedQueryID,
		)
	}

	srv := server.New(server.Options{
		Config:  cfg,
		Routes:  routes,
		Client:  client,
		Metrics: collector,
		Version: health.VersionInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
	})
	if err := srv.Listen(); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Fprintf(out, "restql %s listening on %s (%d routes, upstream %s)\n",
		Version, srv.Addr(), routes.Len(), client.URL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx)
	})
	g.Go(func() error {
		probeUpstream(gctx, client, collector, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// probeUpstream checks once at startup that the GraphQL service accepts
// connections. An unreachable service is logged but does not stop serving.
func probeUpstream(ctx context.Context, client *gateway.Client, collector *metrics.Collector, logger *slog.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, upstreamProbeTimeout)
	defer cancel()

	err := client.Ping(probeCtx)
	collector.UpdateUpstreamHealth(err == nil)
	if err != nil {
		logger.Warn("graphql service unreachable at startup", "upstream", client.URL(), "error", err)
		return
	}
	logger.Info("graphql service reachable", "upstream", client.URL())
}
