package client

import (
	"sync"

	"pustaka-backend/internal/accounts"
	"pustaka-backend/internal/platform/auth"
)

// Session holds the authenticated state shared by every view. Writes
// come from one place (login, logout, profile refresh); everything
// else only reads, so the lock is a RWMutex.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *accounts.UserResponse
}

func NewSession() *Session { return &Session{} }

func (s *Session) Set(token string, user *accounts.UserResponse) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// SetUser refreshes the cached user without touching the token.
func (s *Session) SetUser(user *accounts.UserResponse) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy so readers never share the cached struct.
func (s *Session) User() (accounts.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return accounts.UserResponse{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == auth.RoleAdmin
}
