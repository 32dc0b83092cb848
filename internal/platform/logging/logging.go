package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config captures logging configuration options.
type Config struct {
	Level  string
	Output io.Writer
}

// Logger wraps slog with the printf-style helpers used across the codebase.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
}

// New creates a Logger writing leveled text records to the configured output.
func New(cfg Config) (*Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return &Logger{
		slogger: slog.New(handler),
		level:   level,
	}, nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

// Slog exposes the structured logger for integrations that want key/value logging.
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.slogger.Debug(format(msg, args...))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.slogger.Info(format(msg, args...))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.slogger.Warn(format(msg, args...))
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.slogger.Error(format(msg, args...))
}

func format(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
