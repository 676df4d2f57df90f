// Package httpx writes and reads the JSON envelopes spoken by the archive API:
// success bodies carry domain keys at the top level, failures carry
// {"success": false, "error": {"code", "message"}} with a 4xx/5xx status.
package httpx

import (
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetRequestData parses the JSON request body into data. An empty body leaves
// data untouched.
func GetRequestData(r *http.Request, data any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrUnableToParseReqData()
	}
	return nil
}

// Response represents a successful HTTP response.
type Response struct {
	StatusCode int
	Response   any
}

// RequestHandler defines a function type for handling HTTP requests.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp wraps a RequestHandler to provide standardized envelope handling.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			if httperror, ok := err.(*Error); ok {
				httperror.Send(w)
			} else {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("request handler failed")
				ErrApplicationError(err.Error()).Send(w)
			}
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		SendJsonRsp(w, rsp.StatusCode, rsp.Response)
	})
}
