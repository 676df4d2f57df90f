package logtrace

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestIdFromContext(nil))
	assert.Empty(t, RequestIdFromContext(context.Background()))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIdFromContext(ctx))

	ctx = ContextWithRequestID(nil, "req-2")
	assert.Equal(t, "req-2", RequestIdFromContext(ctx))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(&buf)
	defer InitLogger()

	l := Logger(ContextWithRequestID(context.Background(), "req-42"))
	l.Error().Msg("failed")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"message":"failed"`)

	assert.Error(t, SetLevel("not-a-level"))
}
