package logtrace

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type requestIDKey struct{}

// RequestIDHeader is the header carrying the request id to the server.
const RequestIDHeader = "X-Request-ID"

// ContextWithRequestID returns a copy of ctx carrying the request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIdFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or if no request ID is found.
func RequestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}
	return r
}

// Logger returns the global logger, annotated with the request id of ctx when present.
func Logger(ctx context.Context) zerolog.Logger {
	if id := RequestIdFromContext(ctx); id != "" {
		return log.With().Str("request_id", id).Logger()
	}
	return log.Logger
}
