package middleware

import "net/http"

// Chain wraps h with the standard middleware stack.
func Chain(h http.Handler) http.Handler {
	return RequestIDMiddleware(LoggingMiddleware(RecoveryMiddleware(h)))
}
