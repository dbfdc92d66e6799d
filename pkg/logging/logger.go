// Package logging configures the process-wide log/slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Logs go to stderr so that stdout stays free for command output.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New returns a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// WithFile returns a logger that tags every entry with the file being
// processed.
func WithFile(logger *slog.Logger, path string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("file", path)
}
