package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type traceIDKey struct{}

// WithTraceID stores the id that log records are correlated by.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// GetTraceID returns the correlation id stored by WithTraceID, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}

// EnsureTraceID returns ctx carrying a correlation id. An id already on ctx
// wins, then the active span's trace id, then fallback, then a fresh UUID.
func EnsureTraceID(ctx context.Context, fallback string) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	if id := TraceIDFromContext(ctx); id != "" {
		return WithTraceID(ctx, id)
	}
	if fallback == "" {
		fallback = uuid.NewString()
	}
	return WithTraceID(ctx, fallback)
}

// WithComponent tags every record of logger with the emitting component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", component))
}
