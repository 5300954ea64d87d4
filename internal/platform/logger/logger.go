package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns the console's structured JSON logger. TRUSTLAYER_LOG_LEVEL
// (debug, warn, error) overrides the default info level.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: levelFromEnv(),
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler).With("service", "trustlayer-console")
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("TRUSTLAYER_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
