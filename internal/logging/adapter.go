package logging

import "log/slog"

// Logger is the narrow logging interface the client layers accept. It
// matches the shape of the server, k8s and helm Logger interfaces so a
// single adapter can serve all of them.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	With(args ...interface{}) Logger
}

// SlogAdapter adapts a *slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter around the given slog logger. A nil
// logger falls back to slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger returns an adapter around the default slog logger.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(slog.Default())
}

// Logger returns the underlying slog logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

// Debug logs a debug message.
func (a *SlogAdapter) Debug(msg string, args ...interface{}) {
	a.logger.Debug(msg, args...)
}

// Info logs an informational message.
func (a *SlogAdapter) Info(msg string, args ...interface{}) {
	a.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (a *SlogAdapter) Warn(msg string, args ...interface{}) {
	a.logger.Warn(msg, args...)
}

// Error logs an error message.
func (a *SlogAdapter) Error(msg string, args ...interface{}) {
	a.logger.Error(msg, args...)
}

// With returns a new adapter with additional context attributes.
func (a *SlogAdapter) With(args ...interface{}) Logger {
	return &SlogAdapter{logger: a.logger.With(args...)}
}
