package archive

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/crypticarchive/archive/internal/common/apperrors"
	"github.com/crypticarchive/archive/internal/common/httpclient"
	"github.com/crypticarchive/archive/internal/common/logtrace"
)

// Session is a conversation with the archive. It is Disconnected until a
// session id is obtained through Connect or supplied with WithSessionID.
type Session struct {
	config    Config
	client    httpclient.HTTPClientInterface
	sessionID string
}

type options struct {
	sessionID string
	handle    string
	password  string
	withCreds bool
	client    httpclient.HTTPClientInterface
}

// Option configures a Session.
type Option func(*options)

// WithSessionID resumes an existing session.
func WithSessionID(id string) Option {
	return func(o *options) {
		o.sessionID = id
	}
}

// WithCredentials makes New connect with handle and password. It has no effect
// when combined with WithSessionID.
func WithCredentials(handle, password string) Option {
	return func(o *options) {
		o.handle = handle
		o.password = password
		o.withCreds = true
	}
}

// WithHTTPClient replaces the transport, mostly for tests.
func WithHTTPClient(client httpclient.HTTPClientInterface) Option {
	return func(o *options) {
		o.client = client
	}
}

// New creates a Session. When credentials are given and no session id is, it
// connects before returning and fails if connecting fails.
func New(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	s, err := newSession(cfg, o)
	if err != nil {
		return nil, err
	}
	if s.sessionID == "" && o.withCreds {
		if _, err := s.Connect(ctx, o.handle, o.password); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newSession(cfg Config, o *options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.resolve()
	client := o.client
	if client == nil {
		client = httpclient.NewClient(cfg)
	}
	return &Session{
		config:    cfg,
		client:    client,
		sessionID: o.sessionID,
	}, nil
}

// Config returns the resolved configuration of the session.
func (s *Session) Config() Config {
	return s.config
}

// SessionID returns the current session id, empty when disconnected.
func (s *Session) SessionID() string {
	return s.sessionID
}

// Connected reports whether a session id is held.
func (s *Session) Connected() bool {
	return s.sessionID != ""
}

// Connect creates a session for handle and returns the server's response.
// A session id already held is replaced without terminating it on the server.
func (s *Session) Connect(ctx context.Context, handle, password string) (Result, error) {
	path := httpclient.FullPath("sessions")
	raw, err := s.client.Post(ctx, path, map[string]any{
		"handle":   handle,
		"password": password,
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	body, err := parseResult(ctx, raw)
	if err != nil {
		return nil, err
	}
	id := gjson.GetBytes(raw, "session_id")
	if !id.Exists() || id.String() == "" {
		l := logtrace.Logger(ctx)
		l.Error().Msg("session id missing from response")
		return nil, ErrInvalidResponse.New(ErrInvalidResponse.Error()).
			With(apperrors.CtxURL, s.client.FullURL(path)).
			With(apperrors.CtxMethod, http.MethodPost)
	}
	s.sessionID = id.String()
	return body, nil
}

// Open is an alias for Connect.
func (s *Session) Open(ctx context.Context, handle, password string) (Result, error) {
	return s.Connect(ctx, handle, password)
}

// Terminate ends the current session. Without a session it does nothing and
// returns a nil Result. On failure the session id is kept.
func (s *Session) Terminate(ctx context.Context) (Result, error) {
	if !s.Connected() {
		return nil, nil
	}
	raw, err := s.client.Delete(ctx, httpclient.FullPath(sessionPath(s.sessionID)), nil)
	if err != nil {
		return nil, classify(ctx, err)
	}
	body, err := parseResult(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.sessionID = ""
	return body, nil
}

// Disconnect is an alias for Terminate.
func (s *Session) Disconnect(ctx context.Context) (Result, error) {
	return s.Terminate(ctx)
}

// Close is an alias for Terminate.
func (s *Session) Close(ctx context.Context) (Result, error) {
	return s.Terminate(ctx)
}

// Touch extends the lifespan of the current session.
func (s *Session) Touch(ctx context.Context) (Result, error) {
	if err := s.sessionCheck(); err != nil {
		return nil, err
	}
	return s.call(ctx, s.client.Put, sessionPath(s.sessionID), nil)
}

func sessionPath(id string) string {
	return "sessions/" + url.PathEscape(id)
}

// sessionCheck guards every protected operation.
func (s *Session) sessionCheck() error {
	if !s.Connected() {
		return ErrNotConnected
	}
	return nil
}

type verb func(ctx context.Context, path string, data map[string]any) ([]byte, error)

// call issues one request below the API base path and parses the success body.
func (s *Session) call(ctx context.Context, do verb, custom string, data map[string]any) (Result, error) {
	raw, err := do(ctx, httpclient.FullPath(custom), data)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return parseResult(ctx, raw)
}

// protected runs call for an operation that requires a session. The session id
// is added to data.
func (s *Session) protected(ctx context.Context, do verb, custom string, data map[string]any) (Result, error) {
	if err := s.sessionCheck(); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	data["session_id"] = s.sessionID
	return s.call(ctx, do, custom, data)
}

// Signup creates an account for handle. It needs no session and establishes none;
// log in separately afterwards. Session options in opts are ignored.
func Signup(ctx context.Context, cfg Config, handle string, opts ...Option) (Result, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	s, err := newSession(cfg, &options{client: o.client})
	if err != nil {
		return nil, err
	}
	return s.call(ctx, s.client.Post, "users", map[string]any{"handle": handle})
}
