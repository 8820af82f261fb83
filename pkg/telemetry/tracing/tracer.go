package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/restql/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// instrumentationName identifies spans created by the gateway itself.
const instrumentationName = "mercator-hq/restql"

// Tracer wraps the OpenTelemetry tracer provider used by the gateway. It
// owns the provider and the propagator handed to the upstream transport, so
// trace context only reaches the upstream when tracing is enabled.
type Tracer struct {
	config     config.TracingConfig
	tracer     trace.Tracer
	provider   trace.TracerProvider
	sdk        *sdktrace.TracerProvider
	propagator propagation.TextMapPropagator
	enabled    bool
}

// New creates a new Tracer with the given configuration.
// It initializes the OpenTelemetry SDK with an OTLP gRPC exporter and
// installs the provider and W3C propagators globally.
//
// If tracing is disabled in the config, a noop tracer with an empty
// propagator is returned and no global state is touched.
//
// The tracer must be shut down when no longer needed:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig, version string) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}
	if !cfg.Enabled {
		return newNoop(cfg), nil
	}

	exporter, err := createOTLPExporter(cfg, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}
	return NewWithExporter(cfg, version, exporter)
}

// Noop returns a disabled tracer.
func Noop() *Tracer {
	return newNoop(&config.TracingConfig{})
}

func newNoop(cfg *config.TracingConfig) *Tracer {
	provider := noop.NewTracerProvider()
	return &Tracer{
		config:     *cfg,
		tracer:     provider.Tracer(instrumentationName),
		provider:   provider,
		propagator: propagation.NewCompositeTextMapPropagator(),
	}
}

// NewWithExporter builds an enabled tracer around an existing exporter,
// such as an in-memory exporter in tests.
func NewWithExporter(cfg *config.TracingConfig, version string, exporter sdktrace.SpanExporter) (*Tracer, error) {
	sampler, err := createSampler(cfg.Sampler, cfg.SampleRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)

	otel.SetTracerProvider(sdk)
	otel.SetTextMapPropagator(propagator)

	return &Tracer{
		config:     *cfg,
		tracer:     sdk.Tracer(instrumentationName),
		provider:   sdk,
		sdk:        sdk,
		propagator: propagator,
		enabled:    true,
	}, nil
}

// createOTLPExporter creates an OTLP gRPC exporter. The connection is
// established lazily so an unreachable collector never blocks startup.
func createOTLPExporter(cfg *config.TracingConfig, version string) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent("restql/" + version)),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exporter, nil
}

// Start creates a new span with the given name and options.
// The span is automatically linked to the parent span from the context.
//
//	ctx, span := tracer.Start(ctx, "operation")
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Extract returns ctx carrying the trace context found in inbound headers.
// A disabled tracer returns ctx unchanged.
func (t *Tracer) Extract(ctx context.Context, headers http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Provider returns the tracer provider for instrumented transports.
func (t *Tracer) Provider() trace.TracerProvider {
	return t.provider
}

// Propagator returns the propagator for instrumented transports. It is
// empty when tracing is disabled, so nothing is injected into outbound calls.
func (t *Tracer) Propagator() propagation.TextMapPropagator {
	return t.propagator
}

// Shutdown flushes any pending spans and shuts down the tracer.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.enabled || t.sdk == nil {
		return nil
	}
	return t.sdk.Shutdown(ctx)
}

// ForceFlush exports all ended spans that have not been exported yet.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.sdk == nil {
		return nil
	}
	return t.sdk.ForceFlush(ctx)
}

// Enabled returns whether tracing is enabled.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// TraceID returns the trace ID from the context as a string.
// Returns empty string if no trace context exists.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
