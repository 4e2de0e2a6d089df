// Package logging defines the logging interface used across Filehaven and
// its slog-backed implementation.
package logging

import "context"

// Logger is the minimal structured logging surface components depend on.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
