package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"mercator-hq/restql/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength bounds client supplied request IDs.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns every request an ID. A well-formed
// X-Request-ID sent by the client is kept; otherwise a UUIDv4 is generated.
//
// The request ID is:
//   - Stored in the request context, where logging.FromContext picks it up
//   - Echoed in the X-Request-ID response header
//
// The inbound request headers are not modified, so a generated ID is never
// forwarded to the GraphQL service.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts non-empty printable ASCII up to maxRequestIDLength.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
