// Package logging configures the process-wide structured logger.
//
// restql logs through the standard log/slog package. Setup is called once at
// startup and installs the configured handler as the slog default; nothing
// changes it afterwards.
//
// # Levels
//
// TRACE, DEBUG, INFO, WARN and ERROR, case-insensitive. TRACE sits below
// slog's debug level and is used for forwarded headers; DEBUG shows the
// resolved GraphQL variables of each request.
//
// # Formats
//
//   - json: one JSON object per line (default)
//   - text: key=value pairs
//   - pretty: key=value pairs with a short wall-clock timestamp
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Common.Logging, os.Stderr)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logging.FromContext(ctx).Info("request completed", "status", 200)
//
// Credential headers are masked by RedactHeaders before they are logged.
package logging
