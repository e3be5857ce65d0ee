package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log is the process-wide application logger. It discards output until Init runs
// so packages can log from tests without setup.
var Log = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Init installs the JSON stdout logger at the given level (debug, info, warn, error).
func Init(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	Log = slog.New(handler).With("service", "portfolio-admin")
	slog.SetDefault(Log)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
