// Package logging provides the structured logger shared by the server and
// client binaries. Packages depend on the Logger interface rather than slog
// directly so tests can silence output with Nop.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger records structured events at three levels. Variadic args alternate
// keys and values, following slog's convention:
//
//	log.Info(ctx, "starting server", "addr", addr)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// New wraps an existing slog.Logger.
func New(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

// NewText builds a text-format logger writing to w.
func NewText(w io.Writer) Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(w, nil))}
}

// NewDefault builds the logger both binaries use: text format on stderr.
func NewDefault() Logger {
	return NewText(os.Stderr)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) Logger                    { return nopLogger{} }
