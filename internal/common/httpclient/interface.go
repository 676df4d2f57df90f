// Package httpclient issues requests against the archive REST API. It builds fully
// qualified URLs from a Configurator, encodes request data, and turns every
// transport-level failure into an apperrors HTTP error carrying the cause, the url
// and the response received, if any. It never parses response bodies.
package httpclient

import (
	"context"
	"time"
)

// Configurator defines the interface for providing server configuration.
type Configurator interface {
	GetServerURL() string      // scheme://host, without trailing slash
	GetTimeout() time.Duration // zero means no client-side timeout
	InsecureSkipVerify() bool  // skip TLS certificate validation
}

// HTTPClientInterface defines the interface for HTTP client implementations.
type HTTPClientInterface interface {
	// DoRequest makes an HTTP request with the given options and returns the raw body.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error)

	// Get sends data as query parameters.
	Get(ctx context.Context, path string, data map[string]any) ([]byte, error)
	// Post sends data as a JSON body.
	Post(ctx context.Context, path string, data map[string]any) ([]byte, error)
	// Put sends data as a JSON body.
	Put(ctx context.Context, path string, data map[string]any) ([]byte, error)
	// Patch sends data as a JSON body.
	Patch(ctx context.Context, path string, data map[string]any) ([]byte, error)
	// Delete sends data as a JSON body only when data is not empty.
	Delete(ctx context.Context, path string, data map[string]any) ([]byte, error)

	// FullURL combines the server URL with path.
	FullURL(path string) string
}

var _ HTTPClientInterface = &HTTPClient{}
var _ HTTPClientInterface = &TestHTTPClient{}
