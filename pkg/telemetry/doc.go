// Package telemetry groups the observability packages of restql.
//
// # Components
//
//   - logging: process-wide slog setup, request-scoped fields, header redaction
//   - metrics: Prometheus collector for gateway and upstream traffic
//   - tracing: OpenTelemetry tracer provider with OTLP gRPC export
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, _ := logging.Setup(cfg.Common.Logging, os.Stderr)
//	collector := metrics.NewCollector(&cfg.Common.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Common.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// Every component is optional at the call site: a nil *metrics.Collector
// records nothing and a disabled tracer creates non-recording spans.
package telemetry
