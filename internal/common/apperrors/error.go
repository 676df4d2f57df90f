// Package apperrors provides the error taxonomy used by the archive client. Every error
// carries a kind, a human-readable message, an optional cause, an optional server error
// code and a context map. Errors are built from templates so that errors.Is follows the
// taxonomy: an authorization error is also an HTTP error, and every error is a generic one.
package apperrors

import "net/http"

// Kind classifies an error within the taxonomy.
type Kind int

const (
	KindGeneric        Kind = iota // business failure or failed local precondition
	KindHTTP                       // transport-level failure
	KindAuthorization              // server requires authorization
	KindAuthentication             // server requires authentication
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindAuthorization:
		return "authorization"
	case KindAuthentication:
		return "authentication"
	default:
		return "generic"
	}
}

// Context keys populated by the transport and the response interpreter.
const (
	CtxCause    = "cause"
	CtxResponse = "response"
	CtxCode     = "code"
	CtxURL      = "url"
	CtxMethod   = "method"
	CtxStatus   = "status"
)

// Response holds the parts of an HTTP response attached to a failed request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Error defines the interface for archive errors. It extends the standard error
// interface with the taxonomy accessors and builder methods. Builders never mutate
// the receiver; they return a new Error.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	Kind() Kind                 // classification of the error
	Code() string               // server-provided error code, if any
	Cause() error               // underlying cause, if any
	Response() *Response        // HTTP response attached by the transport, if any
	Context() map[string]any    // copy of the context map
	StatusCode() int            // HTTP status code, if any
	ErrorAll() string           // message followed by wrapped errors
	UnwrapAll() []error         // all wrapped errors
	New(msg string) Error       // new error using current as template
	Msg(msg string) Error       // new message, wraps the current error
	MsgErr(msg string, err ...error) Error
	Err(err ...error) Error     // attaches errors, the first non-nil becomes the cause
	With(key string, v any) Error
	SetCode(code string) Error
	SetStatusCode(code int) Error
}

// Base errors of the taxonomy.
var (
	ErrGeneric        Error = newKind("archive error", KindGeneric, nil)
	ErrHTTP           Error = newKind("http error", KindHTTP, ErrGeneric)
	ErrAuthorization  Error = newKind("authorization required", KindAuthorization, ErrHTTP)
	ErrAuthentication Error = newKind("authentication required", KindAuthentication, ErrHTTP)
)
