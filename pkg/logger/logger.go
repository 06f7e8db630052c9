package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "acna-gateway"

// New creates a new zerolog logger with structured output
func New() zerolog.Logger {
	return NewWithConfig(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// NewWithConfig creates a logger for the given level and format. Format
// "pretty" (or ENV=development) selects the console writer.
func NewWithConfig(level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	logLevel := ParseLevel(level)

	if format == "pretty" || os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Str("service", serviceName).
			Logger()
	}

	// JSON output for production
	return zerolog.New(os.Stdout).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
