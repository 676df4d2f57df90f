package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/crypticarchive/archive/internal/common/apperrors"
	"github.com/crypticarchive/archive/internal/common/logtrace"
)

// BasePath is the path prefix shared by every API endpoint.
const BasePath = "/api/v1"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FullPath prefixes custom with the API base path.
func FullPath(custom string) string {
	return BasePath + "/" + strings.TrimPrefix(custom, "/")
}

// HTTPClient represents a client for making HTTP requests to the archive REST API.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// NewClient creates a new HTTP client using the provided configuration.
func NewClient(config Configurator) *HTTPClient {
	transport := http.DefaultTransport
	if config.InsecureSkipVerify() {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}
	return newClient(config, transport)
}

func newClient(config Configurator, transport http.RoundTripper) *HTTPClient {
	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.GetTimeout(),
		},
	}
}

// RequestOptions describes a single request. Data is encoded as query
// parameters for GET and as a JSON body for every other method.
type RequestOptions struct {
	Method string         // HTTP method
	Path   string         // path below the server URL, usually from FullPath
	Data   map[string]any // optional request data
}

// FullURL combines the server URL with path.
func (c *HTTPClient) FullURL(path string) string {
	return strings.TrimRight(c.config.GetServerURL(), "/") + path
}

// DoRequest makes an HTTP request with the given options.
// A 2xx response returns its body. Anything else returns an apperrors.ErrHTTP error.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fullURL := c.FullURL(opts.Path)

	req, err := newRequest(ctx, opts, fullURL)
	if err != nil {
		return nil, c.fail(ctx, opts.Method, fullURL, errors.WithStack(err), nil)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, opts.Method, fullURL, errors.WithStack(err), nil)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, opts.Method, fullURL, errors.Wrap(err, "reading response body"), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rsp := &apperrors.Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		}
		cause := errors.Errorf("server responded with status %d", resp.StatusCode)
		return nil, c.fail(ctx, opts.Method, fullURL, cause, rsp)
	}

	return body, nil
}

func newRequest(ctx context.Context, opts RequestOptions, fullURL string) (*http.Request, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}

	var body io.Reader
	if opts.Method == http.MethodGet {
		q := u.Query()
		for k, v := range opts.Data {
			q.Set(k, queryValue(v))
		}
		u.RawQuery = q.Encode()
	} else if len(opts.Data) > 0 {
		payload, err := json.Marshal(opts.Data)
		if err != nil {
			return nil, fmt.Errorf("unable to encode request data: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logtrace.RequestIdFromContext(ctx); id != "" {
		req.Header.Set(logtrace.RequestIDHeader, id)
	}
	return req, nil
}

// queryValue renders scalars as text and anything structured as JSON.
func queryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any, []string:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// fail logs the failure and builds the HTTP error returned to the caller.
func (c *HTTPClient) fail(ctx context.Context, method, fullURL string, cause error, rsp *apperrors.Response) apperrors.Error {
	message := fmt.Sprintf("http client error processing %s request.", method)

	l := logtrace.Logger(ctx)
	evt := l.Error().Stack().Err(cause).Str("method", method).Str("url", fullURL)
	if rsp != nil {
		evt = evt.Int("status", rsp.StatusCode)
		if code := gjson.GetBytes(rsp.Body, "error.code"); code.Exists() {
			evt = evt.Str("code", code.String())
		}
	}
	evt.Msg(message)

	err := apperrors.ErrHTTP.New(message).
		Err(cause).
		With(apperrors.CtxURL, fullURL).
		With(apperrors.CtxMethod, method)
	if rsp != nil {
		err = err.With(apperrors.CtxResponse, rsp).SetStatusCode(rsp.StatusCode)
	}
	return err
}

// Get makes a GET request with data encoded as query parameters.
func (c *HTTPClient) Get(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: path, Data: data})
}

// Post makes a POST request with data as the JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPost, Path: path, Data: data})
}

// Put makes a PUT request with data as the JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPut, Path: path, Data: data})
}

// Patch makes a PATCH request with data as the JSON body.
func (c *HTTPClient) Patch(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPatch, Path: path, Data: data})
}

// Delete makes a DELETE request. Some servers reject a body on DELETE, so one
// is only sent when data is not empty.
func (c *HTTPClient) Delete(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodDelete, Path: path, Data: data})
}
