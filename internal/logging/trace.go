package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type traceIDKey struct{}

// traceIDBytes is the number of random bytes in a generated trace ID.
const traceIDBytes = 8

// ContextWithTraceID returns a child context carrying the given trace ID.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID stored in ctx, or "" when absent.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetOrGenerateTraceID returns the trace ID already stored in ctx, or a
// freshly generated hex ID when ctx has none.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	buf := make([]byte, traceIDBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; an all-zero
		// ID still identifies the invocation uniquely enough for logs.
		return "0000000000000000"
	}
	return hex.EncodeToString(buf)
}
