package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/crypticarchive/archive/internal/common/logtrace"
	"github.com/crypticarchive/archive/internal/common/uuid"
)

func TestRequestLoggerKeepsClientRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logtrace.RequestIdFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	req.Header.Set(logtrace.RequestIDHeader, "req-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rr.Header().Get(logtrace.RequestIDHeader))
}

func TestRequestLoggerAssignsRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logtrace.RequestIdFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/records", nil))

	id, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.True(t, uuid.IsUUIDv7(id))
	assert.Equal(t, seen, rr.Header().Get(logtrace.RequestIDHeader))
}

func TestPanicHandler(t *testing.T) {
	t.Run("panic before writing", func(t *testing.T) {
		h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rr := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.False(t, gjson.Get(rr.Body.String(), "success").Bool())
		assert.Equal(t, "unable to process request", gjson.Get(rr.Body.String(), "error.message").String())
	})

	t.Run("panic after writing", func(t *testing.T) {
		h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			panic("boom")
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusAccepted, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("no panic", func(t *testing.T) {
		h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
	})
}
