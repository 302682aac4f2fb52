// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an idle HTTP session survives.
const DefaultSessionTTL = 30 * time.Minute

// MaxHTTPBodySize bounds a single POSTed message.
const MaxHTTPBodySize = 10 * 1024 * 1024

// SessionHeader carries the session id issued at initialize.
const SessionHeader = "Mcp-Session-Id"

// MCPHandler processes one encoded JSON-RPC message. It returns nil for
// notifications.
type MCPHandler func(ctx context.Context, msg []byte) ([]byte, error)

// StreamableHTTPServer is the request/response half of the MCP streamable
// HTTP transport: POST carries one message and returns its answer as JSON,
// DELETE ends a session. There is no GET event stream, so server-initiated
// notifications are not delivered in this mode.
//
// Without AuthToken the endpoint is unauthenticated; bind it to loopback.
type StreamableHTTPServer struct {
	handler        MCPHandler
	logger         *zap.Logger
	authToken      string
	requireSession bool
	sessionTTL     time.Duration

	mu       sync.RWMutex
	sessions map[string]*httpSession

	stopCleanup chan struct{}
	cleanupOnce sync.Once
	now         func() time.Time
}

type httpSession struct {
	id           string
	created      time.Time
	lastActivity time.Time
}

// StreamableHTTPServerConfig configures the HTTP transport.
type StreamableHTTPServerConfig struct {
	Handler MCPHandler // required
	Logger  *zap.Logger

	// AuthToken, when set, must arrive as "Authorization: Bearer <token>".
	AuthToken string

	// RequireSession rejects non-initialize requests without a known
	// session id.
	RequireSession bool

	// SessionTTL expires idle sessions. Zero disables expiry.
	SessionTTL time.Duration
}

// NewStreamableHTTPServer creates the HTTP handler.
func NewStreamableHTTPServer(config StreamableHTTPServerConfig) (*StreamableHTTPServer, error) {
	if config.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	ttl := config.SessionTTL
	if ttl < 0 {
		ttl = 0
	}

	s := &StreamableHTTPServer{
		handler:        config.Handler,
		logger:         config.Logger,
		authToken:      config.AuthToken,
		requireSession: config.RequireSession,
		sessionTTL:     ttl,
		sessions:       make(map[string]*httpSession),
		stopCleanup:    make(chan struct{}),
		now:            time.Now,
	}
	if ttl > 0 {
		s.startCleanup()
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *StreamableHTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="autotask-mcp"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *StreamableHTTPServer) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.authToken)) == 1
}

func (s *StreamableHTTPServer) handlePost(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		if mediaType != "application/json" {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxHTTPBodySize+1))
	if err != nil {
		s.logger.Error("Failed to read request body", zap.Error(err))
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > MaxHTTPBodySize {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(body) == 0 {
		http.Error(w, "Empty request body", http.StatusBadRequest)
		return
	}

	isInit := isInitializeRequest(body)
	sessionID := r.Header.Get(SessionHeader)
	switch {
	case sessionID != "":
		if !s.touch(sessionID) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
	case s.requireSession && !isInit:
		http.Error(w, SessionHeader+" header required", http.StatusBadRequest)
		return
	}

	resp, err := s.handler(r.Context(), body)
	if err != nil {
		s.logger.Error("Handler failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if isInit && sessionID == "" {
		id := s.newSession()
		w.Header().Set(SessionHeader, id)
		s.logger.Info("Session created", zap.String("session_id", id))
	}

	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp)
}

func (s *StreamableHTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		http.Error(w, SessionHeader+" header required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	s.logger.Info("Session terminated", zap.String("session_id", sessionID))
	w.WriteHeader(http.StatusOK)
}

func (s *StreamableHTTPServer) newSession() string {
	now := s.now()
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &httpSession{id: id, created: now, lastActivity: now}
	s.mu.Unlock()
	return id
}

// touch refreshes a session and reports whether it exists.
func (s *StreamableHTTPServer) touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastActivity = s.now()
	}
	return ok
}

func isInitializeRequest(body []byte) bool {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return false
	}
	return req.Method == "initialize"
}

// SessionCount returns the number of live sessions.
func (s *StreamableHTTPServer) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops session expiry. It is safe to call more than once.
func (s *StreamableHTTPServer) Close() {
	s.cleanupOnce.Do(func() { close(s.stopCleanup) })
}

func (s *StreamableHTTPServer) startCleanup() {
	interval := s.sessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCleanup:
				return
			case <-ticker.C:
				s.expireSessions(s.now())
			}
		}
	}()
}

func (s *StreamableHTTPServer) expireSessions(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActivity) > s.sessionTTL {
			delete(s.sessions, id)
			s.logger.Info("Session expired",
				zap.String("session_id", id),
				zap.Duration("age", now.Sub(sess.created)))
		}
	}
}

// IsLoopback reports whether addr binds only to the local host.
func IsLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// WarnIfNotLocalhost logs a warning when addr is reachable from other hosts
// and no bearer token protects it.
func WarnIfNotLocalhost(logger *zap.Logger, addr string, authenticated bool) {
	if logger == nil || IsLoopback(addr) {
		return
	}
	if authenticated {
		logger.Info("MCP HTTP transport listening beyond localhost with bearer auth", zap.String("addr", addr))
		return
	}
	logger.Warn("MCP HTTP transport listening beyond localhost without authentication",
		zap.String("addr", addr),
		zap.String("recommendation", "bind to 127.0.0.1 or set server.auth_token"))
}
