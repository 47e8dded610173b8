// Package logging provides structured logging for Atlas with credential
// redaction.
//
// Both subsystems handle an upstream API key that must never appear in log
// output. The Logger wraps log/slog and passes every field through a
// Redactor before it reaches the handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"mercator-hq/atlas/pkg/config"
)

// Logger provides structured logging with credential redaction.
type Logger struct {
	slog     *slog.Logger
	redactor *Redactor
}

// New creates a Logger from configuration. Output defaults to os.Stdout
// when w is nil.
func New(cfg config.LoggingConfig, w io.Writer) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json", "":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	var redactor *Redactor
	if cfg.RedactSecrets {
		redactor = NewRedactor()
	}

	return &Logger{
		slog:     slog.New(handler),
		redactor: redactor,
	}, nil
}

// Slog returns the underlying slog.Logger for packages that take one
// directly. Fields logged through it bypass redaction, so it must only be
// handed to code that never logs credentials.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// SetDefault installs the logger as the process-wide slog default.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.slog)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, l.redact(args)...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, l.redact(args)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, l.redact(args)...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, l.redact(args)...)
}

// With creates a new logger with additional fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:     l.slog.With(l.redact(args)...),
		redactor: l.redactor,
	}
}

func (l *Logger) redact(args []any) []any {
	if l.redactor == nil {
		return args
	}
	return l.redactor.RedactArgs(args...)
}

func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}
