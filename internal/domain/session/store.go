package session

import (
	"sync"
	"time"

	"finboard-go/internal/platform/config"
)

// User mirrors the profile payload returned at login. Field names follow the
// service's wire format.
type User struct {
	ID            int    `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role,omitempty"`
	AgencyNumber  string `json:"agencia_conta,omitempty"`
	AccountNumber string `json:"numero_conta,omitempty"`
}

// Store is the owned session-state object shared by the gateway, the realtime
// channel and the view binding. It models the credential cookie: one named
// value, path-scoped to the whole application, with a short default lifetime
// refreshed only at login.
type Store struct {
	mu         sync.Mutex
	cookieName string
	ttl        time.Duration

	token     string
	expiresAt time.Time
	user      *User

	now func() time.Time
}

// NewStore builds a session store for the configured cookie name and TTL.
func NewStore(cfg config.SessionConfig) *Store {
	ttl := cfg.CookieTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	name := cfg.CookieName
	if name == "" {
		name = "token"
	}
	return &Store{
		cookieName: name,
		ttl:        ttl,
		now:        time.Now,
	}
}

// CookieName reports the name under which the credential is stored.
func (s *Store) CookieName() string {
	return s.cookieName
}

// SetCredential stores a fresh credential and restarts the cookie lifetime.
func (s *Store) SetCredential(token string) {
	s.mu.Lock()
	s.token = token
	s.expiresAt = s.now().Add(s.ttl)
	s.mu.Unlock()
}

// Credential returns the stored token. A cookie past its lifetime is treated
// as absent.
func (s *Store) Credential() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || s.now().After(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

// SetUser records the authenticated profile.
func (s *Store) SetUser(user *User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// User returns the authenticated profile, nil when logged out.
func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Clear drops the credential and profile.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.user = nil
	s.mu.Unlock()
}
