package archive

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypticarchive/archive/internal/archivetest"
	"github.com/crypticarchive/archive/internal/common/apperrors"
	"github.com/crypticarchive/archive/internal/common/httpclient"
)

var testConfig = Config{Scheme: "https", Host: "archive.test"}

func newTestSession(t *testing.T, fake *archivetest.Server, opts ...Option) *Session {
	t.Helper()
	client := httpclient.NewTestClient(testConfig, fake.Handler())
	s, err := New(context.Background(), testConfig, append([]Option{WithHTTPClient(client)}, opts...)...)
	require.NoError(t, err)
	return s
}

func newConnectedSession(t *testing.T) (*Session, *archivetest.Server) {
	t.Helper()
	fake := archivetest.NewServer()
	fake.AddUser("MyUserHandle", "password")
	s := newTestSession(t, fake, WithCredentials("MyUserHandle", "password"))
	require.True(t, s.Connected())
	fake.ResetRequests()
	return s, fake
}

func TestProtectedOperationsRequireSession(t *testing.T) {
	ctx := context.Background()
	operations := map[string]func(s *Session) error{
		"Touch": func(s *Session) error { _, err := s.Touch(ctx); return err },
		"Authenticate": func(s *Session) error {
			_, err := s.Authenticate(ctx, "123456")
			return err
		},
		"ActivateAuthentication": func(s *Session) error {
			_, err := s.ActivateAuthentication(ctx, "password")
			return err
		},
		"DeactivateAuthentication": func(s *Session) error {
			_, err := s.DeactivateAuthentication(ctx, "password")
			return err
		},
		"User": func(s *Session) error { _, err := s.User(ctx); return err },
		"CreateRecord": func(s *Session) error {
			_, err := s.CreateRecord(ctx, "T", "account", nil)
			return err
		},
		"GetRecord":   func(s *Session) error { _, err := s.GetRecord(ctx, "1"); return err },
		"ListRecords": func(s *Session) error { _, err := s.ListRecords(ctx); return err },
		"UpdateRecord": func(s *Session) error {
			_, err := s.UpdateRecord(ctx, "1", map[string]any{"title": "x"})
			return err
		},
		"DeleteRecord": func(s *Session) error { _, err := s.DeleteRecord(ctx, "1"); return err },
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			fake := archivetest.NewServer()
			s := newTestSession(t, fake)

			err := op(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotConnected)
			assert.Equal(t, "You are not connected to the server.", err.Error())
			assert.Equal(t, KindGeneric, KindOf(err))
			assert.Empty(t, fake.Requests())
		})
	}
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores the session id and returns the body", func(t *testing.T) {
		fake := archivetest.NewServer()
		fake.AddUser("h", "p")
		s := newTestSession(t, fake)
		require.False(t, s.Connected())

		body, err := s.Connect(ctx, "h", "p")
		require.NoError(t, err)
		assert.True(t, s.Connected())
		assert.Equal(t, "session-0001", s.SessionID())
		assert.Equal(t, Result{"success": true, "session_id": "session-0001", "authentication_required": false}, body)

		reqs := fake.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPost, reqs[0].Method)
		assert.Equal(t, "/api/v1/sessions", reqs[0].Path)
		assert.JSONEq(t, `{"handle":"h","password":"p"}`, reqs[0].RawBody)
	})

	t.Run("body lacking session id", func(t *testing.T) {
		fake := archivetest.NewServer()
		fake.Respond(http.MethodPost, "/api/v1/sessions", http.StatusOK, `{"success":true}`)
		s := newTestSession(t, fake)

		body, err := s.Connect(ctx, "h", "p")
		assert.Nil(t, body)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.Equal(t, "Invalid response received from server.", err.Error())
		assert.False(t, s.Connected())

		ae, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindGeneric, ae.Kind())
		assert.Equal(t, "https://archive.test/api/v1/sessions", ae.Context()[apperrors.CtxURL])
		assert.Equal(t, http.MethodPost, ae.Context()[apperrors.CtxMethod])
		assert.Empty(t, ErrInvalidResponse.Context(), "the shared sentinel is left untouched")
	})

	t.Run("rejected credentials", func(t *testing.T) {
		fake := archivetest.NewServer()
		s := newTestSession(t, fake)

		_, err := s.Connect(ctx, "nobody", "wrong")
		require.Error(t, err)
		ae, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindGeneric, ae.Kind())
		assert.Equal(t, "Invalid handle or password specified.", ae.Error())
		assert.Equal(t, "errors.sessions.invalid_credentials", ae.Code())
		assert.Equal(t, http.StatusUnauthorized, ae.StatusCode())
		assert.ErrorIs(t, err, ErrHTTP)
		assert.False(t, s.Connected())
	})

	t.Run("replaces an existing session id", func(t *testing.T) {
		fake := archivetest.NewServer()
		fake.AddUser("h", "p")
		s := newTestSession(t, fake, WithSessionID("old"))

		_, err := s.Open(ctx, "h", "p")
		require.NoError(t, err)
		assert.Equal(t, "session-0001", s.SessionID())
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("credentials connect during construction", func(t *testing.T) {
		fake := archivetest.NewServer()
		fake.AddUser("h", "p")
		s := newTestSession(t, fake, WithCredentials("h", "p"))
		assert.True(t, s.Connected())
		assert.True(t, fake.HasSession(s.SessionID()))
	})

	t.Run("failing credentials fail construction", func(t *testing.T) {
		fake := archivetest.NewServer()
		client := httpclient.NewTestClient(testConfig, fake.Handler())
		s, err := New(ctx, testConfig, WithHTTPClient(client), WithCredentials("h", "bad"))
		assert.Nil(t, s)
		assert.Error(t, err)
	})

	t.Run("session id takes precedence over credentials", func(t *testing.T) {
		fake := archivetest.NewServer()
		s := newTestSession(t, fake, WithSessionID("existing"), WithCredentials("h", "p"))
		assert.Equal(t, "existing", s.SessionID())
		assert.Empty(t, fake.Requests())
	})

	t.Run("invalid configuration", func(t *testing.T) {
		s, err := New(ctx, Config{Scheme: "ftp", Host: "archive.test"})
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConnectedIsPure(t *testing.T) {
	fake := archivetest.NewServer()
	s := newTestSession(t, fake)
	assert.Equal(t, s.Connected(), s.Connected())
	assert.False(t, s.Connected())

	s = newTestSession(t, fake, WithSessionID("X"))
	assert.Equal(t, s.Connected(), s.Connected())
	assert.True(t, s.Connected())
	assert.Empty(t, fake.Requests())
}

func TestTerminate(t *testing.T) {
	ctx := context.Background()

	t.Run("disconnected is a no-op", func(t *testing.T) {
		fake := archivetest.NewServer()
		s := newTestSession(t, fake)

		body, err := s.Terminate(ctx)
		assert.NoError(t, err)
		assert.Nil(t, body)
		assert.Empty(t, fake.Requests())
	})

	t.Run("connected deletes the session", func(t *testing.T) {
		s, fake := newConnectedSession(t)
		id := s.SessionID()

		body, err := s.Close(ctx)
		require.NoError(t, err)
		assert.Equal(t, Result{"success": true}, body)
		assert.False(t, s.Connected())
		assert.Empty(t, s.SessionID())
		assert.False(t, fake.HasSession(id))

		reqs := fake.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodDelete, reqs[0].Method)
		assert.Equal(t, "/api/v1/sessions/"+id, reqs[0].Path)
		assert.Empty(t, reqs[0].RawBody)
	})

	t.Run("failure keeps the session id", func(t *testing.T) {
		fake := archivetest.NewServer()
		fake.Fail(http.MethodDelete, "/api/v1/sessions/X", http.StatusInternalServerError, "errors.sessions.delete_failed", "m")
		s := newTestSession(t, fake, WithSessionID("X"))

		body, err := s.Disconnect(ctx)
		assert.Nil(t, body)
		require.Error(t, err)
		assert.Equal(t, "m", err.Error())
		assert.Equal(t, "X", s.SessionID())
		assert.True(t, s.Connected())
		assert.Len(t, fake.Requests(), 1)
	})
}

func TestSessionIDIsEscapedInPath(t *testing.T) {
	ctx := context.Background()
	for _, id := range []string{"a#b", "abc?x=1", "a/b", "a b%"} {
		t.Run(id, func(t *testing.T) {
			fake := archivetest.NewServer()
			fake.AddUser("h", "p")
			fake.AddSessionWithID("h", "a")
			fake.AddSessionWithID("h", "abc")
			fake.AddSessionWithID("h", id)
			s := newTestSession(t, fake, WithSessionID(id))

			body, err := s.Touch(ctx)
			require.NoError(t, err)
			assert.Equal(t, id, body.String("session_id"))

			_, err = s.Terminate(ctx)
			require.NoError(t, err)
			assert.False(t, s.Connected())
			assert.False(t, fake.HasSession(id))
			assert.True(t, fake.HasSession("a"))
			assert.True(t, fake.HasSession("abc"))

			reqs := fake.Requests()
			require.Len(t, reqs, 2)
			for _, r := range reqs {
				assert.Equal(t, "/api/v1/sessions/"+id, r.Path)
				assert.Empty(t, r.Query)
			}
			assert.Equal(t, http.MethodPut, reqs[0].Method)
			assert.Equal(t, http.MethodDelete, reqs[1].Method)
		})
	}
}

func TestTouch(t *testing.T) {
	ctx := context.Background()
	s, fake := newConnectedSession(t)

	body, err := s.Touch(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID(), body.String("session_id"))

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/api/v1/sessions/"+s.SessionID(), reqs[0].Path)

	fake.Fail(http.MethodPut, "/api/v1/sessions/"+s.SessionID(), http.StatusUnauthorized, CodeAuthorizationRequired, "expired")
	_, err = s.Touch(ctx)
	assert.ErrorIs(t, err, ErrAuthorization)
	assert.True(t, s.Connected())
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	fake := archivetest.NewServer()
	client := httpclient.NewTestClient(testConfig, fake.Handler())

	body, err := Signup(ctx, testConfig, "MyUserHandle", WithHTTPClient(client), WithSessionID("ignored"))
	require.NoError(t, err)
	assert.Equal(t, true, body["success"])

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/v1/users", reqs[0].Path)
	assert.Equal(t, map[string]any{"handle": "MyUserHandle"}, reqs[0].Body)

	_, err = Signup(ctx, testConfig, "MyUserHandle", WithHTTPClient(client))
	require.Error(t, err)
	assert.Equal(t, "The handle 'MyUserHandle' is already in use.", err.Error())
	ae, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "errors.users.signup.duplicate_handle", ae.Code())
}

func TestOverTheNetwork(t *testing.T) {
	ctx := context.Background()
	fake := archivetest.NewServer()
	fake.AddUser("h", "p")
	srv := archivetest.NewHTTPServer(fake)
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	s, err := New(ctx, Config{Scheme: u.Scheme, Host: u.Host}, WithCredentials("h", "p"))
	require.NoError(t, err)

	_, err = s.CreateRecord(ctx, "Bank", "account", map[string]any{"url": "https://bank.example"})
	require.NoError(t, err)
	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bank", records[0].String("title"))

	_, err = s.Terminate(ctx)
	require.NoError(t, err)
	assert.False(t, s.Connected())
}
