package logging

import "context"

type contextKey int

const (
	sessionIDKey contextKey = iota
	modelIDKey
)

// WithSessionID attaches a generation session id to the context so log
// entries emitted downstream carry it.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID returns the session id stored in the context, if any.
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// WithModelID attaches the active LLM model id to the context.
func WithModelID(ctx context.Context, modelID string) context.Context {
	return context.WithValue(ctx, modelIDKey, modelID)
}

// GetModelID returns the model id stored in the context, if any.
func GetModelID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(modelIDKey).(string)
	return id, ok
}
