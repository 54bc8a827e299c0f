package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey int

const (
	deliveryIDKey contextKey = iota
)

// NewDeliveryID returns an id that ties together the log lines of one
// notification fan-out.
func NewDeliveryID() string {
	return uuid.NewString()[:8]
}

// WithDeliveryID returns a new context carrying id.
func WithDeliveryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deliveryIDKey, id)
}

// DeliveryIDFromContext returns the delivery id, or "" when none is set.
func DeliveryIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(deliveryIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns the default logger tagged with the delivery id
// found in ctx, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if id := DeliveryIDFromContext(ctx); id != "" {
		logger = logger.With(KeyDeliveryID, id)
	}
	return logger
}
