// Package metrics provides Prometheus metrics collection for restql.
//
// # Metrics
//
//   - restql_requests_total{route,method,status}
//   - restql_request_duration_seconds{route}
//   - restql_parameter_errors_total{route,kind}  kind: missing, coercion, body
//   - restql_partial_responses_total{route}
//   - restql_upstream_duration_seconds{route}
//   - restql_upstream_errors_total{route,kind}   kind: transport, decode
//   - restql_upstream_up
//
// The route label is the registered route pattern, so label cardinality is
// bounded by the configuration.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Common.Metrics, nil)
//	mux.Handle("GET /metrics", collector.Handler())
//
//	collector.RecordRequest("GET /api/v1/users/{id}", "GET", 200, time.Since(start))
//
// Every Record method is a no-op when metrics are disabled or the collector
// is nil, so callers never need to check.
package metrics
