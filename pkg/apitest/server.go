package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/stockdash/pkg/identity"
	"github.com/dmitrymomot/stockdash/pkg/requestid"
)

// ListShape selects how GET /users serializes its payload.
type ListShape int

const (
	// ShapeArray answers with a bare JSON array.
	ShapeArray ListShape = iota
	// ShapeListOfUsers wraps the array in {"list_of_users": [...]}.
	ShapeListOfUsers
	// ShapeUsers wraps the array in {"users": [...]}.
	ShapeUsers
	// ShapeMap answers with an object keyed by user id.
	ShapeMap
)

type record struct {
	user     identity.User
	password string
}

// Server is the fake backend. Construct with NewServer.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	users     map[string]*record // keyed by user id
	order     []string           // insertion order, the list endpoint is order-preserving
	tokens    map[string]string  // token -> user id
	stocks    map[string]stockFixture
	listShape ListShape
	useMongo  bool // emit _id instead of id in user payloads
}

// ServerOption configures the fake.
type ServerOption func(*Server)

// WithListShape selects the user list payload shape. Defaults to ShapeArray.
func WithListShape(shape ListShape) ServerOption {
	return func(s *Server) {
		s.listShape = shape
	}
}

// WithMongoIDs makes user payloads carry "_id" instead of "id", as the
// backend does on some endpoints.
func WithMongoIDs() ServerOption {
	return func(s *Server) {
		s.useMongo = true
	}
}

// NewServer starts the fake backend on a local listener.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		users:  make(map[string]*record),
		tokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/users", s.handleListUsers)
		r.Post("/users/revoke_sessions", s.handleRevokeSessions)
		r.Get("/users/{id}", s.handleGetUser)
		r.Put("/users/{id}", s.handleUpdateUser)
		r.Delete("/users/{id}", s.handleDeleteUser)
		r.Put("/users/{id}/role", s.handlePromoteUser)
		r.Mount("/etl", s.etlRoutes())
	})

	s.srv = httptest.NewServer(r)
	return s
}

// URL is the base address of the fake backend.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the listener down.
func (s *Server) Close() {
	s.srv.Close()
}

// SeedUser inserts a user with the given password and returns its id,
// generating one when the record carries none.
func (s *Server) SeedUser(user identity.User, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = identity.RoleStandard
	}
	s.users[user.ID] = &record{user: user, password: password}
	s.order = append(s.order, user.ID)
	return user.ID
}

// IssueToken mints a valid token for an existing user, bypassing login.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// RevokeToken invalidates a single token.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// User returns a copy of the stored record, or nil.
func (s *Server) User(id string) *identity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil
	}
	return rec.user.Clone()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) userPayload(u identity.User) map[string]any {
	payload := map[string]any{
		"username":  u.Username,
		"email":     u.Email,
		"full_name": u.FullName,
		"role":      string(u.Role),
	}
	if s.useMongo {
		payload["_id"] = u.ID
	} else {
		payload["id"] = u.ID
	}
	return payload
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"full_name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		s.writeDetail(w, http.StatusUnprocessableEntity, "missing required fields")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.users {
		if rec.user.Username == req.Username {
			s.writeDetail(w, http.StatusConflict, "Username already registered")
			return
		}
	}

	id := uuid.NewString()
	user := identity.User{
		ID:       id,
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     identity.RoleStandard,
	}
	s.users[id] = &record{user: user, password: req.Password}
	s.order = append(s.order, id)

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "User registered",
		"user_id": id,
		"email":   user.Email,
		"role":    string(user.Role),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		s.writeDetail(w, http.StatusUnprocessableEntity, "form body required")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.writeDetail(w, http.StatusUnprocessableEntity, "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.users {
		if rec.user.Username != username {
			continue
		}
		if rec.password != password {
			break
		}
		token := uuid.NewString()
		s.tokens[token] = id
		s.writeJSON(w, http.StatusOK, map[string]any{
			"message":      "Login successful",
			"access_token": token,
			"token_type":   "Bearer",
			"user": map[string]string{
				"id":       id,
				"username": username,
			},
		})
		return
	}
	s.writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		userID, valid := s.tokens[token]
		_, exists := s.users[userID]
		s.mu.Unlock()

		if !valid || !exists {
			s.writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), userID)))
	})
}

func (s *Server) caller(r *http.Request) identity.User {
	id := callerID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[id]; ok {
		return *rec.user.Clone()
	}
	return identity.User{ID: id}
}

func ownerOrAdmin(caller identity.User, targetID string) bool {
	return caller.ID == targetID || caller.Role == identity.RoleAdmin
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := s.caller(r)
	if !ownerOrAdmin(caller, id) {
		s.writeDetail(w, http.StatusForbidden, "You do not have permission to view this profile")
		return
	}

	s.mu.Lock()
	rec, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.userPayload(rec.user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := s.caller(r)
	if !ownerOrAdmin(caller, id) {
		s.writeDetail(w, http.StatusForbidden, "Not owner of the account")
		return
	}

	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if req.FullName == "" && req.Email == "" {
		s.writeDetail(w, http.StatusBadRequest, "Invalid Input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if req.FullName != "" {
		rec.user.FullName = req.FullName
	}
	if req.Email != "" {
		rec.user.Email = req.Email
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":   "User updated",
		"user_id":   id,
		"full_name": rec.user.FullName,
		"email":     rec.user.Email,
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := s.caller(r)
	if !ownerOrAdmin(caller, id) {
		s.writeDetail(w, http.StatusForbidden, "Not owner of the profile")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		s.writeDetail(w, http.StatusNotFound, "User not found or already deleted")
		return
	}
	delete(s.users, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for token, uid := range s.tokens {
		if uid == id {
			delete(s.tokens, token)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":    "User deleted successfully",
		"deleted_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePromoteUser(w http.ResponseWriter, r *http.Request) {
	caller := s.caller(r)
	if caller.Role != identity.RoleAdmin {
		s.writeDetail(w, http.StatusForbidden, "Admin privileges required")
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	rec.user.Role = identity.RoleAdmin

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "User promoted to admin",
		"user_id": id,
	})
}

func (s *Server) handleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	callerID := callerID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	for token, uid := range s.tokens {
		if uid == callerID {
			delete(s.tokens, token)
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "All sessions have been revoked. You must log in again.",
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	caller := s.caller(r)
	if caller.Role != identity.RoleAdmin {
		s.writeDetail(w, http.StatusForbidden, "Admin privileges required")
		return
	}

	s.mu.Lock()
	payloads := make([]map[string]any, 0, len(s.order))
	keyed := make(map[string]any, len(s.order))
	var keys []string
	for _, id := range s.order {
		if rec, ok := s.users[id]; ok {
			p := s.userPayload(rec.user)
			payloads = append(payloads, p)
			keyed[id] = p
			keys = append(keys, id)
		}
	}
	shape := s.listShape
	s.mu.Unlock()

	switch shape {
	case ShapeListOfUsers:
		s.writeJSON(w, http.StatusOK, map[string]any{"list_of_users": payloads})
	case ShapeUsers:
		s.writeJSON(w, http.StatusOK, map[string]any{"users": payloads})
	case ShapeMap:
		// Serialized by hand to keep document order deterministic.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		parts := make([]string, 0, len(keys))
		for i, id := range keys {
			data, _ := json.Marshal(payloads[i])
			key, _ := json.Marshal(id)
			parts = append(parts, string(key)+":"+string(data))
		}
		_, _ = w.Write([]byte("{" + strings.Join(parts, ",") + "}"))
	default:
		s.writeJSON(w, http.StatusOK, payloads)
	}
}
