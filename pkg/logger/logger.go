// Package logger provides centralized slog.Logger construction with
// configurable level and output format (text or JSON).
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is the process-wide log level. Loggers built by New follow it, so
// a configuration reload can change verbosity without rebuilding them.
var Level = new(slog.LevelVar)

// New creates a *slog.Logger writing to stderr in the given format and
// sets the shared Level.
// Level: "debug", "info", "warn", "error" (default: "info").
// Format: "json" or "text" (default: "text").
func New(level, format string) *slog.Logger {
	Level.Set(ParseLevel(level))
	return NewWithLevel(os.Stderr, Level, format)
}

// NewWithWriter creates a *slog.Logger writing to w with a fixed level.
// Useful for testing or redirecting output.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	return NewWithLevel(w, ParseLevel(level), format)
}

// NewWithLevel creates a *slog.Logger writing to w whose level is read
// from lv on every record.
func NewWithLevel(w io.Writer, lv slog.Leveler, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lv}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a level string to slog.Level, ignoring case.
// Recognized values: "debug", "warn", "warning", "error". Everything else
// returns LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// ValidLevel reports whether level names a known level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}
