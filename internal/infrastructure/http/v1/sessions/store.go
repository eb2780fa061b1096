// Package sessions hosts in-memory invoice drafting sessions. Each session
// owns one invoice builder; the store serializes access per session so the
// builder itself stays lock-free.
package sessions

import (
	"sync"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/invoice"
)

// DefaultIdleTimeout after which an untouched session may be purged.
const DefaultIdleTimeout = 2 * time.Hour

type session struct {
	mu       sync.Mutex
	builder  *invoice.Builder
	lastUsed time.Time
}

// Store keeps drafting sessions keyed by session ID.
type Store struct {
	defaultTaxPercent string

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStore creates an empty session store. New builders inherit
// defaultTaxPercent for their draft lines.
func NewStore(defaultTaxPercent string) *Store {
	return &Store{
		defaultTaxPercent: defaultTaxPercent,
		sessions:          make(map[string]*session),
	}
}

// Create starts a new session and returns its ID.
func (s *Store) Create() string {
	sessionID := id.New().String()

	s.mu.Lock()
	s.sessions[sessionID] = &session{
		builder:  invoice.NewBuilder(s.defaultTaxPercent),
		lastUsed: time.Now(),
	}
	s.mu.Unlock()

	return sessionID
}

// With runs fn with exclusive access to the session's builder.
func (s *Store) With(sessionID string, fn func(b *invoice.Builder) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return apperror.NewNotFound("session", sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.lastUsed = time.Now()
	return fn(sess.builder)
}

// Delete removes a session.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PurgeIdle drops sessions untouched for longer than idle and reports how
// many were removed.
func (s *Store) PurgeIdle(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for sessionID, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, sessionID)
			purged++
		}
	}
	return purged
}
