package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeySessionID ctxKey = "session_id"
)

// basic global logger, JSON to stdout.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Setup replaces the global logger with one writing JSON at the given level.
func Setup(w io.Writer, level string) *slog.Logger {
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	return logger
}

func Logger() *slog.Logger {
	return logger
}

// Discard silences logging, handy in tests and the interactive CLI.
func Discard() {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// WithSessionID stores a practice session id in the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, sessionID)
}

// LoggerFromContext adds request_id and session_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	l := logger
	if reqID, _ := ctx.Value(ctxKeyRequestID).(string); reqID != "" {
		l = l.With("request_id", reqID)
	}
	if sessID, _ := ctx.Value(ctxKeySessionID).(string); sessID != "" {
		l = l.With("session_id", sessID)
	}
	return l
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
