package logging

import (
	"log/slog"
	"os"
)

// Logger is the application-wide structured logger instance. It defaults to
// the process default logger until InitLogger runs.
var Logger = slog.Default()

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// WithEvent returns a logger with the event_id field.
func WithEvent(eventID string) *slog.Logger {
	return Logger.With("event_id", eventID)
}

// WithChannel returns a logger with the channel_id field.
func WithChannel(channelID string) *slog.Logger {
	return Logger.With("channel_id", channelID)
}

// WithEntity returns a logger with the entity field.
func WithEntity(entity string) *slog.Logger {
	return Logger.With("entity", entity)
}
