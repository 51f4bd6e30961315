package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the application's slog logger: JSON to stdout in production,
// text in development so local logs stay readable.
func New(logLevel, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: getSlogLevel(logLevel)}

	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// ConfigureLogrus aligns the logrus default logger, used by the database
// package, with the configured level and format.
func ConfigureLogrus(logLevel, environment string) {
	logrus.SetLevel(ParseLogrusLevel(logLevel))
	if environment != "development" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

// getSlogLevel converts string level to slog.Level
func getSlogLevel(level string) slog.Level {
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

// ParseLogrusLevel converts string level to logrus.Level
func ParseLogrusLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
