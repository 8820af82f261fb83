package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"mercator-hq/restql/pkg/config"
)

// LevelTrace is below slog's debug level and carries per-request detail
// such as forwarded headers.
const LevelTrace = slog.Level(-8)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in logfmt-style key=value format.
	FormatText LogFormat = "text"
	// FormatPretty outputs short, human-readable lines for terminals.
	FormatPretty LogFormat = "pretty"
)

var (
	setupOnce   sync.Once
	setupLogger *slog.Logger
	setupErr    error
)

// Setup builds the process-wide logger from cfg, installs it with
// slog.SetDefault and returns it. Only the first call has any effect; later
// calls return the first result unchanged. A nil writer means os.Stderr.
func Setup(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	setupOnce.Do(func() {
		setupLogger, setupErr = New(cfg, w)
		if setupErr == nil {
			slog.SetDefault(setupLogger)
		}
	})
	return setupLogger, setupErr
}

// New creates a logger without touching global state.
func New(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatPretty:
		opts.ReplaceAttr = prettyAttrs
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), nil
}

// Trace logs at LevelTrace.
func Trace(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	logger.Log(ctx, LevelTrace, msg, args...)
}

// ParseLevel parses a case-insensitive level name into a slog.Level.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch strings.ToLower(formatStr) {
	case "json", "":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "pretty":
		return FormatPretty, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

// replaceLevel names LevelTrace "TRACE" instead of "DEBUG-4".
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

func prettyAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format("15:04:05.000"))
		}
		return a
	}
	return replaceLevel(groups, a)
}

// resetForTesting clears the one-time setup.
func resetForTesting() {
	setupOnce = sync.Once{}
	setupLogger = nil
	setupErr = nil
}
