package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return lvl
}

func NewLogger(level string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo writes JSON log lines to w.
func NewLoggerTo(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
}

// NewConsoleLogger renders human readable lines for local runs.
func NewConsoleLogger(level string) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	return zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(level))
}

// LoggerFor picks the console writer in dev environments.
func LoggerFor(env, level string) zerolog.Logger {
	if strings.EqualFold(env, "dev") {
		return NewConsoleLogger(level)
	}
	return NewLogger(level)
}
