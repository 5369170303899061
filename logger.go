package strata

import (
	"fmt"
	"log/slog"
)

// Logger is the diagnostic surface the pipeline needs. Messages are
// printf-style. Implementations must be safe for concurrent use.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// slogLogger adapts log/slog to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// NewLogger wraps a slog.Logger. Passing nil uses slog.Default.
func NewLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(format(msg, args)) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(format(msg, args)) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(format(msg, args)) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(format(msg, args)) }

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

var defaultLogger Logger = NewLogger(nil)

// SetDefaultLogger replaces the logger used by components that were not
// handed one explicitly. Call it during startup, before building pipelines.
func SetDefaultLogger(log Logger) {
	if log != nil {
		defaultLogger = log
	}
}

// DefaultLogger returns the process-wide default logger.
func DefaultLogger() Logger {
	return defaultLogger
}
