package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"mercator-hq/restql/pkg/gateway"
	"mercator-hq/restql/pkg/telemetry/logging"
)

// PanicMessage is the error message returned to clients when a handler panics.
const PanicMessage = "internal server error"

// RecoveryMiddleware recovers from panics in HTTP handlers and answers 500
// with the gateway error envelope. The panic and its stack are logged; no
// internal detail reaches the client. http.ErrAbortHandler is re-raised so
// the server can abort the connection.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			args := []any{
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
			}
			if start := GetStartTime(r.Context()); !start.IsZero() {
				args = append(args, "elapsed_ms", time.Since(start).Milliseconds())
			}
			args = append(args, "stack", string(debug.Stack()))
			logging.FromContext(r.Context()).ErrorContext(r.Context(), "panic in handler", args...)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write(gateway.ErrorEnvelope(PanicMessage))
		}()

		next.ServeHTTP(w, r)
	})
}
