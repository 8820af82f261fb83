package gateway

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/restql/pkg/telemetry/logging"
	"mercator-hq/restql/pkg/telemetry/metrics"
	"mercator-hq/restql/pkg/telemetry/tracing"
)

// SpanName is the name of the server span of a gateway request.
const SpanName = "restql.request"

// Options configures a Gateway. Nil collaborators are disabled.
type Options struct {
	Metrics      *metrics.Collector
	Tracer       *tracing.Tracer
	MaxBodyBytes int64
}

// Gateway runs the translation pipeline for every route of a RouteTable:
// resolve parameters, build the persisted query request, call the GraphQL
// service once and reconcile its answer.
type Gateway struct {
	client       *Client
	metrics      *metrics.Collector
	tracer       *tracing.Tracer
	maxBodyBytes int64
}

// New creates a Gateway around the shared upstream client.
func New(client *Client, opts Options) *Gateway {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &Gateway{
		client:       client,
		metrics:      opts.Metrics,
		tracer:       tracer,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request, route *Route) {
	start := time.Now()

	ctx := g.tracer.Extract(r.Context(), r.Header)
	ctx, span := g.tracer.Start(ctx, SpanName, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	ctx = logging.WithRoute(ctx, route.Pattern)
	tracing.SetRouteAttributes(span, route.Pattern, r.Method, route.Endpoint.PersistedQueryID)
	tracing.SetRequestID(span, logging.GetRequestID(ctx))

	result := g.handle(r.WithContext(ctx), route, span)
	result.Write(w)

	tracing.SetResponseAttributes(span, result.Status, result.Partial)
	g.metrics.RecordRequest(route.Path, string(route.Method), result.Status, time.Since(start))
}

func (g *Gateway) handle(r *http.Request, route *Route, span trace.Span) *Result {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	src, err := SourcesFromRequest(r, route, g.maxBodyBytes)
	var vars Variables
	if err == nil {
		vars, err = Resolve(route.Endpoint, src)
	}
	if err != nil {
		kind := ErrorKind(err)
		g.metrics.RecordParameterError(route.Path, kind)
		tracing.SetError(span, err, kind)
		logger.Debug("parameter resolution failed", "kind", kind, "error", err)
		return FailureResult(err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrVariableCount, len(vars)))

	body, err := NewPersistedQueryRequest(route.Endpoint.PersistedQueryID, vars).Encode()
	if err != nil {
		tracing.SetError(span, err, KindInternal)
		logger.Error("failed to build upstream request", "error", err)
		return FailureResult(err)
	}

	logger.Debug("resolved variables",
		"pq_id", route.Endpoint.PersistedQueryID,
		"variables", vars,
	)
	logging.Trace(ctx, logger, "forwarding request headers", "headers", logging.RedactHeaders(r.Header))

	upstreamStart := time.Now()
	resp, err := g.client.Do(ctx, r.Header, body)
	g.metrics.RecordUpstreamLatency(route.Path, time.Since(upstreamStart))
	if err != nil {
		g.metrics.RecordUpstreamError(route.Path, KindTransport)
		tracing.SetError(span, err, KindTransport)
		logger.Warn("upstream request failed", "upstream", g.client.URL(), "error", err)
		return FailureResult(err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrUpstreamStatus, resp.Status))

	result := Reconcile(resp)
	switch {
	case result.Err != nil:
		g.metrics.RecordUpstreamError(route.Path, KindDecode)
		tracing.SetError(span, result.Err, KindDecode)
		logger.Warn("invalid upstream response",
			"upstream_status", resp.Status,
			"error", result.Err,
		)
	case result.Partial:
		g.metrics.RecordPartialResponse(route.Path)
	}
	return result
}
