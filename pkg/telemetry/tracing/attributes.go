package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// Standard attribute keys follow OpenTelemetry semantic conventions
// (http.*). Gateway-specific keys use the "restql.*" namespace.
const (
	AttrRoute             = "restql.route"
	AttrPersistedQueryID  = "restql.persisted_query.id"
	AttrRequestID         = "restql.request_id"
	AttrVariableCount     = "restql.variables.count"
	AttrPartial           = "restql.partial"
	AttrErrorType         = "restql.error.type"
	AttrHTTPMethod        = "http.request.method"
	AttrHTTPStatusCode    = "http.response.status_code"
	AttrUpstreamStatus    = "restql.upstream.status_code"
	AttrErrorMessage      = "error.message"
	AttrUpstreamErrorKind = "restql.upstream.error"
)

// SetRouteAttributes sets the attributes identifying the matched route.
//
// Example:
//
//	SetRouteAttributes(span, "GET /api/v1/users/{id}", "GET", "5b1a0f3c")
func SetRouteAttributes(span trace.Span, route, method, persistedQueryID string) {
	span.SetAttributes(
		attribute.String(AttrRoute, route),
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrPersistedQueryID, persistedQueryID),
	)
}

// SetRequestID records the inbound request id.
func SetRequestID(span trace.Span, requestID string) {
	if requestID == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrRequestID, requestID))
}

// SetResponseAttributes records the outward status. Statuses of 500 and
// above mark the span as failed.
func SetResponseAttributes(span trace.Span, status int, partial bool) {
	span.SetAttributes(
		attribute.Int(AttrHTTPStatusCode, status),
		attribute.Bool(AttrPartial, partial),
	)
	if status >= 500 {
		span.SetStatus(codes.Error, "")
	}
}

// SetError marks the span as failed and records the error.
//
// Parameters:
//   - errorType: short classification, e.g. "missing", "coercion", "transport"
func SetError(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
