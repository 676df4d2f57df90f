package httpclient

import (
	"net/http"
	"net/http/httptest"
)

// TestHTTPClient is an HTTPClient whose requests are served in-process by an
// http.Handler through httptest.NewRecorder, without any network calls.
type TestHTTPClient struct {
	*HTTPClient
}

// NewTestClient creates a test HTTP client dispatching into handler.
func NewTestClient(config Configurator, handler http.Handler) *TestHTTPClient {
	return &TestHTTPClient{
		HTTPClient: newClient(config, recorderTransport{handler: handler}),
	}
}

type recorderTransport struct {
	handler http.Handler
}

func (t recorderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body == nil {
		req = req.Clone(req.Context())
		req.Body = http.NoBody
	}
	rr := httptest.NewRecorder()
	t.handler.ServeHTTP(rr, req)
	return rr.Result(), nil
}
