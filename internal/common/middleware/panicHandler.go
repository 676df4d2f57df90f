package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/crypticarchive/archive/internal/common/httpx"
)

// PanicHandler creates middleware that recovers from panics in HTTP handlers. The
// panic and its stack are logged and, unless a response was already started, the
// client receives an application error envelope.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprintf("%v", err)).
					Str("stack_trace", string(debug.Stack())).
					Msg("panic occurred")

				if ww.Status() == 0 {
					httpx.ErrApplicationError("unable to process request").Send(ww)
				}
			}
		}()
		next.ServeHTTP(ww, r)
	})
}
