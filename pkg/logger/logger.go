package logger

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init wires the process-wide logger: JSON at info level in production,
// text at debug level everywhere else. Every record carries the service name.
func Init(env string) {
	var handler slog.Handler

	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	defaultLogger = slog.New(handler).With(slog.String("service", "leave-management"))
	slog.SetDefault(defaultLogger)
}

// LoggerWrapper returns the process logger, lazily falling back to a
// development setup so callers never hold a nil logger.
func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		Init("development")
	}
	return defaultLogger
}
