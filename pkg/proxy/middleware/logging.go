package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/restql/pkg/telemetry/logging"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

// newResponseWriter creates a new response writer wrapper.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code before writing.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called if not already done.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware logs one "request completed" line per request with the
// method, path, status, latency and request ID. 5xx responses log at ERROR,
// 4xx at WARN, everything else at INFO.
//
// Log format (JSON):
//
//	{
//	  "time": "2026-01-12T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "request_id": "0f8e2c1a-...",
//	  "method": "GET",
//	  "path": "/api/v1/users/42",
//	  "status": 200,
//	  "latency_ms": 12,
//	  "bytes": 57,
//	  "remote_addr": "192.168.1.100:54321"
//	}
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ctx := context.WithValue(r.Context(), StartTimeKey, startTime)
		logger := logging.FromContext(ctx)

		rw := newResponseWriter(w)

		logger.DebugContext(ctx, "request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(rw, r.WithContext(ctx))

		logger.Log(ctx, levelForStatus(rw.statusCode), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"latency_ms", time.Since(startTime).Milliseconds(),
			"bytes", rw.bytes,
			"remote_addr", r.RemoteAddr,
		)
	})
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
