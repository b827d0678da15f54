package logging

import (
	"context"
	"log/slog"
)

var _ Logger = (*SlogLogger)(nil)

// SlogLogger adapts a *slog.Logger to Logger. It backs the "text" and "json"
// log formats.
type SlogLogger struct {
	base *slog.Logger
}

// NewSlogLogger wraps base. A nil base falls back to slog.Default().
func NewSlogLogger(base *slog.Logger) *SlogLogger {
	if base == nil {
		base = slog.Default()
	}
	return &SlogLogger{base: base}
}

// Debug records state transitions and other chatter that is off by default.
func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.base.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.base.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.base.WarnContext(ctx, msg, args...)
}

// Error logs a failed operation. The caller still returns the error.
func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.base.ErrorContext(ctx, msg, args...)
}

// With returns a child logger; the receiver is left unchanged.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{base: s.base.With(args...)}
}
