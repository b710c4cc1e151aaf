// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with the fields the workflow logs repeatedly.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger = NewLogger(os.Stdout, "info")

// NewLogger builds a JSON logger writing to w at the given level
// (debug, info, warn, error). Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{Logger: slog.New(handler)}
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetGlobal replaces GlobalLogger and the slog default.
func SetGlobal(l *Logger) {
	GlobalLogger = l
	slog.SetDefault(l.Logger)
}

// WithRequest returns a logger scoped to one document request.
func (l *Logger) WithRequest(requestID string) *Logger {
	return &Logger{Logger: l.With(slog.String("request_id", requestID))}
}

// LogTransition records a committed status change. Use it on a logger from
// WithRequest.
func (l *Logger) LogTransition(ctx context.Context, from, to, actor, trigger string) {
	l.InfoContext(ctx, "request transitioned",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("actor_id", actor),
		slog.String("trigger", trigger),
	)
}

// LogFailure records a rejected or failed operation.
func (l *Logger) LogFailure(ctx context.Context, op string, err error, attrs ...any) {
	args := append([]any{slog.String("op", op), slog.String("error", err.Error())}, attrs...)
	l.WarnContext(ctx, "operation failed", args...)
}
