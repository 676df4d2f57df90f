package httpx

import (
	"net/http"

	"github.com/tidwall/sjson"
)

// Error is a failure envelope with its HTTP status.
type Error struct {
	Code       string
	Message    string
	StatusCode int
}

// Send writes the failure envelope to w. If w is nil, no action is taken.
// An empty Code or Message is left out of the envelope.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	body := []byte(`{"success":false,"error":{}}`)
	if e.Code != "" {
		body, _ = sjson.SetBytes(body, "error.code", e.Code)
	}
	if e.Message != "" {
		body, _ = sjson.SetBytes(body, "error.message", e.Message)
	}
	statusCode := e.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

// Error returns the message.
func (e *Error) Error() string {
	return e.Message
}

// Error codes understood by the archive client.
const (
	CodeAuthorizationRequired  = "errors.sessions.authorization_required"
	CodeAuthenticationRequired = "errors.sessions.authentication_required"
)

// ErrUnableToParseReqData returns an error when request data cannot be parsed.
func ErrUnableToParseReqData() *Error {
	return &Error{
		Code:       "errors.requests.invalid_data",
		Message:    "unable to parse request data",
		StatusCode: http.StatusBadRequest,
	}
}

// ErrApplicationError returns an error for application-level failures.
// If no message is provided, a default message is used.
func ErrApplicationError(msg ...string) *Error {
	s := "unable to process request"
	if len(msg) > 0 {
		s = msg[0]
	}
	return &Error{
		Code:       "errors.server.internal",
		Message:    s,
		StatusCode: http.StatusInternalServerError,
	}
}

// ErrAuthorizationRequired returns the error sent for requests without a valid session.
func ErrAuthorizationRequired() *Error {
	return &Error{
		Code:       CodeAuthorizationRequired,
		Message:    "You must be logged in to perform this action.",
		StatusCode: http.StatusUnauthorized,
	}
}

// ErrAuthenticationRequired returns the error sent when a session still needs a second factor.
func ErrAuthenticationRequired() *Error {
	return &Error{
		Code:       CodeAuthenticationRequired,
		Message:    "Your session must be authenticated to perform this action.",
		StatusCode: http.StatusForbidden,
	}
}

// ErrNotFound returns a not-found error carrying code.
func ErrNotFound(code, msg string) *Error {
	return &Error{
		Code:       code,
		Message:    msg,
		StatusCode: http.StatusNotFound,
	}
}

// ErrBadRequest returns a bad-request error carrying code.
func ErrBadRequest(code, msg string) *Error {
	return &Error{
		Code:       code,
		Message:    msg,
		StatusCode: http.StatusBadRequest,
	}
}
