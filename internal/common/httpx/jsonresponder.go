package httpx

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJsonRsp encodes v as the response body with the given status.
// A zero status is sent as 200.
func SendJsonRsp(w http.ResponseWriter, statusCode int, v any) {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("unable to encode response")
		ErrApplicationError("unable to encode response").Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}
