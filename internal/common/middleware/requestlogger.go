// Package middleware provides HTTP middleware for request logging and panic
// recovery. It integrates with zerolog for structured logging and traces
// requests by the id the archive client sends in the X-Request-ID header.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crypticarchive/archive/internal/common/logtrace"
	"github.com/crypticarchive/archive/internal/common/uuid"
)

// RequestLogger creates middleware that logs incoming requests. The request id
// sent by the client is kept, or a new one is assigned, and it is stored in the
// request context and echoed in the response headers.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(logtrace.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewRequestID()
		}
		ctx := logtrace.ContextWithRequestID(r.Context(), requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)

		w.Header().Set(logtrace.RequestIDHeader, requestID)

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		requestURL := fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.Path)
		requestFields := map[string]any{
			"requestURL":    requestURL,
			"requestMethod": r.Method,
			"requestPath":   r.URL.Path,
			"remoteIP":      r.RemoteAddr,
			"proto":         r.Proto,
		}
		log.Ctx(ctx).Debug().Fields(requestFields).Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Debug().
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
