package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// GenerateTraceID returns a random UUID v4 string.
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID gives work that did not arrive as an HTTP request, such as a
// CLI run, a trace ID so its log lines can be correlated.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}
