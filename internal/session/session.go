package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session owns the bearer token for the lifetime of the process. It is the
// only state the client persists: the token is mirrored to a fallback file
// so a restarted CLI stays signed in. Inject a Session instead of reading
// ambient storage.
type Session struct {
	mu    sync.Mutex
	token string
	path  string
	hooks []func()
}

// New builds a session backed by the token file at path. An empty path keeps
// the token in memory only. A pre-existing token file is loaded eagerly.
func New(path string) *Session {
	s := &Session{path: path}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			s.token = strings.TrimSpace(string(data))
		}
	}
	return s
}

// Token returns the current bearer token, empty when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores the token and persists it to the fallback file.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	return nil
}

// Clear signs out: drops the in-memory token and removes the fallback file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// OnInvalidate registers a hook run whenever the session is invalidated by
// an authentication failure.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Invalidate clears the token and fires the registered hooks. Called on any
// 401 from the backend; a 403 must not end up here.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	if s.path != "" {
		os.Remove(s.path)
	}
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Claims peeks at the token's claims without verifying the signature. The
// server is the authority on token validity; this only exists so the client
// can show expiry and role without wasting a request.
func (s *Session) Claims() (jwt.MapClaims, error) {
	tok := s.Token()
	if tok == "" {
		return nil, fmt.Errorf("not signed in")
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the token's expiry when the claim is present.
func (s *Session) ExpiresAt() (time.Time, bool) {
	claims, err := s.Claims()
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Role returns the role claim, empty when absent.
func (s *Session) Role() string {
	claims, err := s.Claims()
	if err != nil {
		return ""
	}
	if role, ok := claims["role"].(string); ok {
		return role
	}
	return ""
}
