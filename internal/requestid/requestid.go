// Package requestid generates and threads a per-call trace id through
// context.Context so every log line emitted while servicing a tool
// operation can be correlated back to the request that caused it.
//
// The JSON-RPC/MCP transport that eventually calls into this engine is an
// external collaborator (§1); this package only owns the id's lifecycle
// from the moment the tool surface accepts a call.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// Key is the context key under which the request id is stored.
const Key contextKey = "request_id"

// New generates a fresh request id.
func New() string {
	return uuid.New().String()
}

// WithRequestID returns a new context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, Key, id)
}

// FromContext retrieves the request id from ctx, or "" if none is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(Key).(string); ok {
		return id
	}
	return ""
}
