// Package logger provides structured logging setup.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a *slog.Logger writing JSON to stdout at the given level,
// with a "service" attribute on every record.
func New(level, service string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, service)
}

// NewWithWriter is New with an explicit output, for tests.
func NewWithWriter(w io.Writer, level, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
