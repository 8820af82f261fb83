// Package tracing provides OpenTelemetry distributed tracing for restql.
//
// # Overview
//
// Every gateway request gets a "restql.request" span carrying the matched
// route, the persisted query id and the outward status. The upstream call is
// a child client span created by the otelhttp transport of the upstream
// client, which also injects the W3C traceparent header.
//
// Spans are exported over OTLP gRPC. When tracing is disabled the Tracer is
// a noop and its propagator is empty, so nothing is added to upstream
// requests.
//
// # Trace Context Propagation
//
// Inbound W3C Trace Context headers are honoured:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Sampling Strategies
//
//   - always: Sample all traces (development/debugging)
//   - never: Sample no traces
//   - ratio: Sample a percentage of traces (production)
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Common.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(tracer.Extract(r.Context(), r.Header), "restql.request")
//	defer span.End()
package tracing
