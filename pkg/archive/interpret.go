package archive

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/crypticarchive/archive/internal/common/apperrors"
	"github.com/crypticarchive/archive/internal/common/logtrace"
)

// DefaultErrorMessage is used when the server does not explain a failure.
const DefaultErrorMessage = "Unexpected error encountered processing request."

// Error codes with a dedicated kind.
const (
	CodeAuthorizationRequired  = "errors.sessions.authorization_required"
	CodeAuthenticationRequired = "errors.sessions.authentication_required"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// interpret converts a failure envelope into a typed error. It never returns nil.
func interpret(ctx context.Context, body gjson.Result) apperrors.Error {
	message := DefaultErrorMessage
	var code string
	if envelope := body.Get("error"); envelope.Exists() {
		if m := envelope.Get("message"); m.Exists() && m.Type != gjson.Null {
			message = m.String()
		}
		code = envelope.Get("code").String()
	}

	l := logtrace.Logger(ctx)
	l.Error().Str("message", message).Str("code", code).Msg("error response received from server")

	switch code {
	case CodeAuthorizationRequired:
		return apperrors.ErrAuthorization.New(message).SetCode(code)
	case CodeAuthenticationRequired:
		return apperrors.ErrAuthentication.New(message).SetCode(code)
	default:
		return apperrors.ErrGeneric.New(message).SetCode(code)
	}
}

// classify routes a failed call through interpret. HTTP errors are interpreted
// using the response body they carry; anything else as an empty envelope. The
// original error is kept as the cause of the returned one.
func classify(ctx context.Context, err error) error {
	body := gjson.Parse("{}")
	if ae, ok := apperrors.As(err); ok && ae.Kind() != apperrors.KindGeneric {
		if rsp := ae.Response(); rsp != nil && gjson.ValidBytes(rsp.Body) {
			body = gjson.ParseBytes(rsp.Body)
		}
	}

	classified := interpret(ctx, body).Err(err)
	if ae, ok := apperrors.As(err); ok {
		for _, key := range []string{apperrors.CtxResponse, apperrors.CtxURL, apperrors.CtxMethod, apperrors.CtxStatus} {
			if v, ok := ae.Context()[key]; ok {
				classified = classified.With(key, v)
			}
		}
	}
	return classified
}

// parseResult decodes a success body. A body that is not a JSON object is
// classified like any other failure.
func parseResult(ctx context.Context, raw []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, classify(ctx, errors.Wrap(err, "parsing response body"))
	}
	return r, nil
}
