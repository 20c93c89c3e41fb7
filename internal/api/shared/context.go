package shared

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
)

// ContextKey namespaces request context values set by the API layer.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader carries the trace ID in and out of the service.
	TraceIDHeader = "X-Trace-ID"

	// TraceIDLength is the length of a trace ID in hex characters.
	TraceIDLength = 32
)

// NewTraceID returns a random 32-character hex trace ID.
func NewTraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// ValidTraceID reports whether id looks like a trace ID this service issues.
func ValidTraceID(id string) bool {
	if len(id) != TraceIDLength {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// WithTraceID stores id in the context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
