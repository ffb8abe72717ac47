// Package log configures the process-wide structured logger.
package log

import (
	"io"
	"log/slog"
	"os"
)

func Setup(logLevel string) {
	SetupWithFormat(logLevel, "text")
}

// SetupWithFormat installs the default slog logger writing to stderr in either
// "text" or "json" format.
func SetupWithFormat(logLevel, format string) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, logLevel, format)))
}

func newHandler(w io.Writer, logLevel, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	}

	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
