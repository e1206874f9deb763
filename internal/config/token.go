package config

import (
	"errors"
	"sync"
)

// ErrNotConfigured is returned by TokenStore.Token before a token was set.
var ErrNotConfigured = errors.New("sentry auth token not configured")

// TokenStore holds the Sentry bearer token for the lifetime of the process.
// It is safe for concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore returns a store seeded with token, which may be empty.
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

// Set replaces the stored token.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the stored token or ErrNotConfigured.
func (s *TokenStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNotConfigured
	}
	return s.token, nil
}

// Configured reports whether a token has been set.
func (s *TokenStore) Configured() bool {
	_, err := s.Token()
	return err == nil
}
