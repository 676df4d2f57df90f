// Package archivetest provides an in-process fake of the Cryptic Archive REST API.
// It keeps users, sessions and records in memory, records every request it
// receives, and can be told to fail or to answer a given route with a canned body.
// Serve it over the network with NewHTTPServer or in-process with Handler.
package archivetest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/crypticarchive/archive/internal/common/httpx"
	"github.com/crypticarchive/archive/internal/common/logtrace"
	"github.com/crypticarchive/archive/internal/common/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultAuthCode is the second-factor code accepted for every user with
// authentication enabled.
const DefaultAuthCode = "123456"

// Request is a request received by the server.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	RawBody   string
	Body      map[string]any
	RequestID string
}

type user struct {
	handle        string
	password      string
	authEnabled   bool
	authCode      string
	nextRecordSeq int
}

type session struct {
	id            string
	handle        string
	authenticated bool
}

type cannedResponse struct {
	status int
	body   string
}

// Server is the fake archive.
type Server struct {
	mu       sync.Mutex
	router   chi.Router
	users    map[string]*user
	sessions map[string]*session
	records  map[string]map[string]map[string]any // handle -> record id -> record
	requests []Request
	canned   map[string]cannedResponse
	nextID   int
}

// NewServer creates an empty fake archive.
func NewServer() *Server {
	s := &Server{
		users:    make(map[string]*user),
		sessions: make(map[string]*session),
		records:  make(map[string]map[string]map[string]any),
		canned:   make(map[string]cannedResponse),
	}
	s.mountHandlers()
	return s
}

// NewHTTPServer starts s on a local network listener.
// The caller must Close the returned server.
func NewHTTPServer(s *Server) *httptest.Server {
	return httptest.NewServer(s.Handler())
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) mountHandlers() {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PanicHandler)
	r.Use(s.recordRequest)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", httpx.WrapHttpRsp(s.signup))
		r.Get("/users/me", httpx.WrapHttpRsp(s.withSession(s.currentUser)))

		r.Post("/sessions", httpx.WrapHttpRsp(s.createSession))
		r.Put("/sessions/{sessionID}", httpx.WrapHttpRsp(s.touchSession))
		r.Delete("/sessions/{sessionID}", httpx.WrapHttpRsp(s.deleteSession))

		r.Post("/authentications", httpx.WrapHttpRsp(s.authenticate))
		r.Put("/authentications/activate", httpx.WrapHttpRsp(s.setAuthentication(true)))
		r.Put("/authentications/deactivate", httpx.WrapHttpRsp(s.setAuthentication(false)))

		r.Post("/records", httpx.WrapHttpRsp(s.withSession(s.createRecord)))
		r.Get("/records", httpx.WrapHttpRsp(s.withSession(s.listRecords)))
		r.Get("/records/{recordID}", httpx.WrapHttpRsp(s.withSession(s.getRecord)))
		r.Put("/records/{recordID}", httpx.WrapHttpRsp(s.withSession(s.updateRecord)))
		r.Delete("/records/{recordID}", httpx.WrapHttpRsp(s.withSession(s.deleteRecord)))
	})
	s.router = r
}

// AddUser registers a user with the given password.
func (s *Server) AddUser(handle, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[handle] = &user{handle: handle, password: password, authCode: DefaultAuthCode}
}

// AddSession registers a session for an existing user and returns its id.
func (s *Server) AddSession(handle string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newSessionLocked(handle)
}

// AddSessionWithID registers a session with a chosen id for an existing user.
func (s *Server) AddSessionWithID(handle, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{id: id, handle: handle}
}

// EnableAuthentication switches on the second factor for handle.
func (s *Server) EnableAuthentication(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[handle]; ok {
		u.authEnabled = true
	}
}

// HasSession reports whether id is a live session.
func (s *Server) HasSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// Respond makes every following request to method and path answer with status
// and body, bypassing the fake's own logic. path is matched exactly, without query.
func (s *Server) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method+" "+path] = cannedResponse{status: status, body: body}
}

// Fail makes every following request to method and path answer with the envelope error.
func (s *Server) Fail(method, path string, status int, code, message string) {
	rr := httptest.NewRecorder()
	(&httpx.Error{Code: code, Message: message, StatusCode: status}).Send(rr)
	s.Respond(method, path, status, rr.Body.String())
}

// ClearResponses removes every canned response.
func (s *Server) ClearResponses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned = make(map[string]cannedResponse)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests forgets the requests received so far.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			RawBody:   string(raw),
			RequestID: logtrace.RequestIdFromContext(r.Context()),
		}
		if len(raw) > 0 {
			json.Unmarshal(raw, &req.Body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		canned, ok := s.canned[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(canned.status)
			w.Write([]byte(canned.body))
			return
		}
		r.Body = io.NopCloser(strings.NewReader(string(raw)))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) newSessionLocked(handle string) string {
	s.nextID++
	id := fmt.Sprintf("session-%04d", s.nextID)
	s.sessions[id] = &session{id: id, handle: handle}
	return id
}

type sessionHandler func(r *http.Request, sess *session, data map[string]any) (*httpx.Response, error)

// withSession resolves the session named by session_id, from the query for GET
// and from the body otherwise, and enforces the second factor.
func (s *Server) withSession(h sessionHandler) httpx.RequestHandler {
	return func(r *http.Request) (*httpx.Response, error) {
		data := map[string]any{}
		if err := httpx.GetRequestData(r, &data); err != nil {
			return nil, err
		}
		id := r.URL.Query().Get("session_id")
		if id == "" {
			id, _ = data["session_id"].(string)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		sess, ok := s.sessions[id]
		if !ok {
			return nil, httpx.ErrAuthorizationRequired()
		}
		if u := s.users[sess.handle]; u != nil && u.authEnabled && !sess.authenticated {
			return nil, httpx.ErrAuthenticationRequired()
		}
		return h(r, sess, data)
	}
}

// pathParam returns the decoded URL parameter. chi routes on the escaped path
// when one is present, so its parameters may still be escaped.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func success(fields map[string]any) *httpx.Response {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: body}
}

func (s *Server) signup(r *http.Request) (*httpx.Response, error) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if req.Handle == "" {
		return nil, httpx.ErrBadRequest("errors.users.signup.handle_missing", "A handle must be provided.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Handle]; exists {
		return nil, httpx.ErrBadRequest("errors.users.signup.duplicate_handle",
			fmt.Sprintf("The handle '%s' is already in use.", req.Handle))
	}
	s.users[req.Handle] = &user{handle: req.Handle, password: "password", authCode: DefaultAuthCode}
	return success(map[string]any{"handle": req.Handle, "password": "password"}), nil
}

func (s *Server) createSession(r *http.Request) (*httpx.Response, error) {
	var req struct {
		Handle   string `json:"handle"`
		Password string `json:"password"`
	}
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[req.Handle]
	if !exists || u.password != req.Password {
		return nil, &httpx.Error{
			Code:       "errors.sessions.invalid_credentials",
			Message:    "Invalid handle or password specified.",
			StatusCode: http.StatusUnauthorized,
		}
	}
	id := s.newSessionLocked(u.handle)
	return success(map[string]any{"session_id": id, "authentication_required": u.authEnabled}), nil
}

func (s *Server) lookupSessionParam(r *http.Request) (*session, error) {
	id := pathParam(r, "sessionID")
	sess, exists := s.sessions[id]
	if !exists {
		return nil, httpx.ErrNotFound("errors.sessions.not_found", "Session not found.")
	}
	return sess, nil
}

func (s *Server) touchSession(r *http.Request) (*httpx.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupSessionParam(r)
	if err != nil {
		return nil, err
	}
	return success(map[string]any{"session_id": sess.id}), nil
}

func (s *Server) deleteSession(r *http.Request) (*httpx.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupSessionParam(r)
	if err != nil {
		return nil, err
	}
	delete(s.sessions, sess.id)
	return success(nil), nil
}

func (s *Server) authenticate(r *http.Request) (*httpx.Response, error) {
	var req struct {
		Code      string `json:"code"`
		SessionID string `json:"session_id"`
	}
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, exists := s.sessions[req.SessionID]
	if !exists {
		return nil, httpx.ErrAuthorizationRequired()
	}
	u := s.users[sess.handle]
	if u == nil || req.Code != u.authCode {
		return nil, &httpx.Error{
			Code:       "errors.authentications.invalid_code",
			Message:    "Invalid authentication code specified.",
			StatusCode: http.StatusUnauthorized,
		}
	}
	sess.authenticated = true
	return success(nil), nil
}

func (s *Server) setAuthentication(enabled bool) httpx.RequestHandler {
	return func(r *http.Request) (*httpx.Response, error) {
		var req struct {
			Password  string `json:"password"`
			SessionID string `json:"session_id"`
		}
		if err := httpx.GetRequestData(r, &req); err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		sess, exists := s.sessions[req.SessionID]
		if !exists {
			return nil, httpx.ErrAuthorizationRequired()
		}
		u := s.users[sess.handle]
		if u == nil || u.password != req.Password {
			return nil, &httpx.Error{
				Code:       "errors.authentications.invalid_password",
				Message:    "Invalid password specified.",
				StatusCode: http.StatusUnauthorized,
			}
		}
		u.authEnabled = enabled
		sess.authenticated = enabled
		if enabled {
			return success(map[string]any{"code": u.authCode}), nil
		}
		return success(nil), nil
	}
}

func (s *Server) currentUser(r *http.Request, sess *session, _ map[string]any) (*httpx.Response, error) {
	u := s.users[sess.handle]
	return success(map[string]any{
		"user": map[string]any{
			"handle":                 u.handle,
			"authentication_enabled": u.authEnabled,
		},
	}), nil
}

func (s *Server) createRecord(r *http.Request, sess *session, data map[string]any) (*httpx.Response, error) {
	content, _ := data["content"].(map[string]any)
	if title, _ := content["title"].(string); title == "" {
		return nil, httpx.ErrBadRequest("errors.records.title_missing", "A record title must be provided.")
	}

	u := s.users[sess.handle]
	u.nextRecordSeq++
	id := fmt.Sprintf("%s-%d", u.handle, u.nextRecordSeq)

	record := map[string]any{"id": id}
	for k, v := range content {
		record[k] = v
	}
	if s.records[u.handle] == nil {
		s.records[u.handle] = make(map[string]map[string]any)
	}
	s.records[u.handle][id] = record
	return success(map[string]any{"record_id": id}), nil
}

func (s *Server) findRecord(r *http.Request, sess *session) (map[string]any, error) {
	id := pathParam(r, "recordID")
	record, exists := s.records[sess.handle][id]
	if !exists {
		return nil, httpx.ErrNotFound("errors.records.not_found", fmt.Sprintf("Unable to locate record '%s'.", id))
	}
	return record, nil
}

func (s *Server) getRecord(r *http.Request, sess *session, _ map[string]any) (*httpx.Response, error) {
	record, err := s.findRecord(r, sess)
	if err != nil {
		return nil, err
	}
	return success(map[string]any{"record": record}), nil
}

func (s *Server) listRecords(r *http.Request, sess *session, _ map[string]any) (*httpx.Response, error) {
	list := []map[string]any{}
	for _, record := range s.records[sess.handle] {
		list = append(list, map[string]any{
			"id":    record["id"],
			"title": record["title"],
			"type":  record["type"],
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return fmt.Sprint(list[i]["id"]) < fmt.Sprint(list[j]["id"])
	})
	return success(map[string]any{"records": list}), nil
}

func (s *Server) updateRecord(r *http.Request, sess *session, data map[string]any) (*httpx.Response, error) {
	record, err := s.findRecord(r, sess)
	if err != nil {
		return nil, err
	}
	content, _ := data["content"].(map[string]any)
	for k, v := range content {
		if k == "id" {
			continue
		}
		record[k] = v
	}
	return success(nil), nil
}

func (s *Server) deleteRecord(r *http.Request, sess *session, _ map[string]any) (*httpx.Response, error) {
	record, err := s.findRecord(r, sess)
	if err != nil {
		return nil, err
	}
	delete(s.records[sess.handle], fmt.Sprint(record["id"]))
	return success(nil), nil
}
