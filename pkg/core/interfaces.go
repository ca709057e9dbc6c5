package core

import (
	"fmt"
	"log/slog"
	"strings"
)

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}

// SlogLogger forwards formatted messages to a structured logger at info level
type SlogLogger struct {
	Logger *slog.Logger
}

// NewSlogLogger wraps l, or the default slog logger when l is nil
func NewSlogLogger(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{Logger: l}
}

func (s SlogLogger) Printf(format string, args ...interface{}) {
	s.Logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
