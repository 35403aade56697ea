package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const correlationIDCtxKey contextKey = "correlation_id"

// CorrelationIDKey is the log attribute carrying the correlation id.
const CorrelationIDKey = "correlation_id"

// WithCorrelationID adds a correlation ID to the context.
// If id is empty, a new UUID is generated.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDCtxKey).(string); ok {
		return id
	}
	return ""
}
