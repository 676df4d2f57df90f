package archive

import "github.com/crypticarchive/archive/internal/common/apperrors"

// Error is the error type returned by every operation.
type Error = apperrors.Error

// ErrorKind classifies an Error.
type ErrorKind = apperrors.Kind

// Response is the HTTP response attached to errors raised by the transport.
type Response = apperrors.Response

const (
	KindGeneric        = apperrors.KindGeneric
	KindHTTP           = apperrors.KindHTTP
	KindAuthorization  = apperrors.KindAuthorization
	KindAuthentication = apperrors.KindAuthentication
)

var (
	ErrGeneric        = apperrors.ErrGeneric
	ErrHTTP           = apperrors.ErrHTTP
	ErrAuthorization  = apperrors.ErrAuthorization
	ErrAuthentication = apperrors.ErrAuthentication

	// ErrNotConnected is returned by protected operations called without a session.
	ErrNotConnected = apperrors.New("You are not connected to the server.")
	// ErrInvalidResponse is returned when a successful connect lacks a session id.
	ErrInvalidResponse = apperrors.New("Invalid response received from server.")
	// ErrInvalidConfig is the template for configuration errors.
	ErrInvalidConfig = apperrors.New("invalid configuration")
)

// AsError returns err as an Error if it is one or wraps one.
func AsError(err error) (Error, bool) {
	return apperrors.As(err)
}

// KindOf returns the kind of err. Errors foreign to this package are KindGeneric.
func KindOf(err error) ErrorKind {
	return apperrors.KindOf(err)
}
