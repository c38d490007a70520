package logger

import (
	"context"
	"log/slog"
)

type correlationIDKey struct{}

// WithCorrelationID stores the request correlation id in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation id stored in ctx, or "" when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns log annotated with the correlation id carried by ctx.
func FromContext(ctx context.Context, log *slog.Logger) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		return log.With(slog.String("correlation_id", id))
	}
	return log
}
