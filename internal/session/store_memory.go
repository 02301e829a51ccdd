package session

import (
	"context"
	"sync"
	"time"

	"btoflow/pkg/domain"
)

type memoryEntry struct {
	nric      domain.NRIC
	expiresAt time.Time
}

// InMemoryStore tracks sessions for console mode and tests. Expired entries
// are dropped lazily on lookup.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]memoryEntry)}
}

func (s *InMemoryStore) Put(_ context.Context, sessionID string, nric domain.NRIC, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memoryEntry{nric: nric, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Exists(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (s *InMemoryStore) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
