// pkg/memcache/valid_codes.go
package memcache

import (
	"sync"
	"time"
)

// CodeStore holds short-lived email verification codes.
type CodeStore interface {
	Set(email string, code string, ttl time.Duration)

	// Consume reports whether code is the live code for email and removes it
	// (single-use). Expired or missing codes never match.
	Consume(email string, code string) bool

	Peek(email string) (string, bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

type ValidCodes struct {
	mu   sync.RWMutex
	data map[string]entry
}

func NewValidCodes() *ValidCodes {
	return &ValidCodes{
		data: make(map[string]entry),
	}
}

func (s *ValidCodes) Set(email string, code string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[email] = entry{
		code:      code,
		expiresAt: time.Now().Add(ttl),
	}
}

func (s *ValidCodes) Consume(email string, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[email]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.data, email)
		return false
	}
	if e.code != code {
		return false
	}
	delete(s.data, email) // single-use
	return true
}

func (s *ValidCodes) Peek(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[email]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.code, true
}
