package logging

import (
	"context"
	"log/slog"

	"mercator-hq/restql/pkg/telemetry/tracing"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// RouteKey is the context key for the matched route pattern.
	RouteKey contextKey = "route"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRoute adds the matched route pattern to the context.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

// GetRoute retrieves the matched route pattern from the context.
func GetRoute(ctx context.Context) string {
	if route, ok := ctx.Value(RouteKey).(string); ok {
		return route
	}
	return ""
}

// FromContext returns the default logger enriched with the request-scoped
// fields found in ctx (request_id, route, trace_id).
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if fields := extractContextFields(ctx); len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return logger
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if route := GetRoute(ctx); route != "" {
		fields = append(fields, "route", route)
	}

	if traceID := tracing.TraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	return fields
}
