package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"mercator-hq/restql/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func enabledConfig() *config.TracingConfig {
	return &config.TracingConfig{
		Enabled:     true,
		Sampler:     SamplerAlways,
		SampleRatio: 1,
		Endpoint:    "localhost:4317",
		ServiceName: "restql-test",
		Insecure:    true,
	}
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, "test")
	assert.Error(t, err)
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)

	assert.False(t, tracer.Enabled())
	assert.Empty(t, tracer.Propagator().Fields())

	_, span := tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestNew_DisabledDoesNotInject(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)

	headers := http.Header{}
	tracer.Propagator().Inject(context.Background(), propagation.HeaderCarrier(headers))
	assert.Empty(t, headers.Get("traceparent"))
}

func TestNew_InvalidSampler(t *testing.T) {
	cfg := enabledConfig()
	cfg.Sampler = "sometimes"

	_, err := NewWithExporter(cfg, "test", tracetest.NewInMemoryExporter())
	assert.ErrorContains(t, err, "unknown sampler strategy")
}

func TestNew_EnabledOTLP(t *testing.T) {
	tracer, err := New(enabledConfig(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	assert.True(t, tracer.Enabled())
	assert.Contains(t, tracer.Propagator().Fields(), "traceparent")
}

func TestTracer_SpansAreExported(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(enabledConfig(), "1.2.3", exporter)
	require.NoError(t, err)

	ctx, parent := tracer.Start(context.Background(), "restql.request")
	SetRouteAttributes(parent, "GET /api/v1/users/{id}", "GET", "abc")
	SetRequestID(parent, "req-1")
	_, child := tracer.Start(ctx, "child")
	child.End()
	SetResponseAttributes(parent, 206, true)
	parent.End()

	require.NoError(t, tracer.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())

	root := spans[1]
	attrs := attrMap(root.Attributes)
	assert.Equal(t, "GET /api/v1/users/{id}", attrs[AttrRoute].AsString())
	assert.Equal(t, "abc", attrs[AttrPersistedQueryID].AsString())
	assert.Equal(t, "req-1", attrs[AttrRequestID].AsString())
	assert.Equal(t, int64(206), attrs[AttrHTTPStatusCode].AsInt64())
	assert.True(t, attrs[AttrPartial].AsBool())
	assert.Equal(t, codes.Unset, root.Status.Code)
}

func TestTracer_ExtractHonoursParent(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(enabledConfig(), "test", exporter)
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx := tracer.Extract(context.Background(), headers)
	ctx, span := tracer.Start(ctx, "restql.request")
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", TraceID(ctx))
	span.End()
}

func TestSetError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(enabledConfig(), "test", exporter)
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "failing")
	SetError(span, nil, "ignored")
	SetError(span, errors.New("connection refused"), "transport")
	span.End()
	require.NoError(t, tracer.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	attrs := attrMap(spans[0].Attributes)
	assert.Equal(t, "transport", attrs[AttrErrorType].AsString())
	assert.Len(t, spans[0].Events, 1)
}

func TestSetResponseAttributes_ServerErrorMarksSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(enabledConfig(), "test", exporter)
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "failing")
	SetResponseAttributes(span, 500, false)
	span.End()
	require.NoError(t, tracer.ForceFlush(context.Background()))

	assert.Equal(t, codes.Error, exporter.GetSpans()[0].Status.Code)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.25, false},
		{"", 1, false},
		{SamplerRatio, 1.5, true},
		{SamplerRatio, -0.1, true},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		sampler, err := createSampler(tt.strategy, tt.ratio)
		if tt.wantErr {
			assert.Error(t, err, "%s/%v", tt.strategy, tt.ratio)
			continue
		}
		require.NoError(t, err)
		assert.Contains(t, sampler.Description(), "ParentBased")
	}
}
