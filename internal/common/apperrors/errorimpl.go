package apperrors

import (
	"errors"
	"maps"
	"strings"
)

// appError implements the apperrors.Error interface.
type appError struct {
	msg           string         // primary error message
	kind          Kind           // taxonomy classification
	base          error          // template error for errors.Is/As compatibility
	wrappedErrors []error        // additional wrapped errors
	context       map[string]any // code, cause, response, url...
}

func newKind(msg string, kind Kind, base error) *appError {
	return &appError{
		msg:  msg,
		kind: kind,
		base: base,
	}
}

// Error returns the message.
func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by every wrapped error.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.wrappedErrors {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the base error for compatibility with errors.Is / errors.As.
func (e *appError) Unwrap() error {
	return e.base
}

// UnwrapAll returns all wrapped errors in the order they were added.
func (e *appError) UnwrapAll() []error {
	return e.wrappedErrors
}

func (e *appError) Kind() Kind {
	return e.kind
}

func (e *appError) Code() string {
	code, _ := e.context[CtxCode].(string)
	return code
}

func (e *appError) Cause() error {
	cause, _ := e.context[CtxCause].(error)
	return cause
}

func (e *appError) Response() *Response {
	rsp, _ := e.context[CtxResponse].(*Response)
	return rsp
}

func (e *appError) StatusCode() int {
	status, _ := e.context[CtxStatus].(int)
	return status
}

// Context returns a copy of the context map. It is never nil.
func (e *appError) Context() map[string]any {
	ctx := make(map[string]any, len(e.context))
	maps.Copy(ctx, e.context)
	return ctx
}

// New creates a fresh error using the current error as a template.
// The new error inherits the kind but starts with an empty context.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:  msg,
		kind: e.kind,
		base: e,
	}
}

// Msg creates a new error with a new message and wraps the original error.
// Kind and context are inherited.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:           msg,
		kind:          e.kind,
		base:          e,
		wrappedErrors: append([]error{e}, e.wrappedErrors...),
		context:       e.Context(),
	}
}

// MsgErr creates a new error with a message and wraps additional errors.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	n := e.Msg(msg).(*appError)
	return n.attach(errs)
}

// Err attaches additional errors to the current error. The first non-nil error
// becomes the cause unless one is already set.
func (e *appError) Err(errs ...error) Error {
	cp := e.clone()
	return cp.attach(errs)
}

func (e *appError) attach(errs []error) *appError {
	for _, err := range errs {
		if err == nil {
			continue
		}
		e.wrappedErrors = append(e.wrappedErrors, err)
		if _, ok := e.context[CtxCause]; !ok {
			e.context[CtxCause] = err
		}
	}
	return e
}

// With returns a copy with the context key set to v.
func (e *appError) With(key string, v any) Error {
	cp := e.clone()
	cp.context[key] = v
	return cp
}

// SetCode returns a copy carrying the server error code. An empty code is not recorded.
func (e *appError) SetCode(code string) Error {
	if code == "" {
		return e.clone()
	}
	return e.With(CtxCode, code)
}

// SetStatusCode returns a copy carrying the HTTP status code.
func (e *appError) SetStatusCode(code int) Error {
	return e.With(CtxStatus, code)
}

func (e *appError) clone() *appError {
	cp := *e
	cp.context = e.Context()
	cp.wrappedErrors = append([]error(nil), e.wrappedErrors...)
	return &cp
}

// New creates a generic error with the given message.
func New(msg string) Error {
	return ErrGeneric.New(msg)
}

// As returns err as an Error if it is one or wraps one.
func As(err error) (Error, bool) {
	var ae Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindGeneric when err is not an Error.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind()
	}
	return KindGeneric
}

// Is checks if the error is equal to the target error by checking
// both the base error and all wrapped errors.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if e.base != nil && errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
