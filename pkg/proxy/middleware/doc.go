// Package middleware provides the HTTP middleware wrapped around every
// request the gateway serves, ops endpoints included.
//
// # Middleware Chain
//
//	handler = RequestID(Logging(Recovery(mux)))
//
// Order (outermost to innermost):
//  1. RequestID: assign the request ID before anything logs
//  2. Logging: one "request completed" line, after recovery has set the status
//  3. Recovery: turn handler panics into a 500 error envelope
//
// Chain applies the three in this order.
//
// # Request ID
//
// A client supplied X-Request-ID is kept when it is printable ASCII of at
// most 128 bytes; otherwise a UUID v4 is generated:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is echoed in the response and attached to every log line of the
// request through logging.FromContext. It is not added to the request
// forwarded to the GraphQL service.
//
// # Panic Recovery
//
// A panicking handler answers
//
//	HTTP/1.1 500 Internal Server Error
//	Content-Type: application/json
//
//	{"errors":[{"message":"internal server error"}],"data":null}
//
// and the panic value and stack trace are logged at ERROR.
package middleware
