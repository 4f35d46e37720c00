// File: internal/repository/token/memory_store.go
package token

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	subject   string
	expiresAt time.Time
}

// MemoryStore keeps the live-token set in process memory behind a mutex.
// Revocations do not survive a restart; the GORM store does.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(ctx context.Context, rawToken, subject string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[hashToken(rawToken)] = memoryEntry{subject: subject, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, rawToken string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.tokens[hashToken(rawToken)]
	if !ok {
		return false, nil
	}
	return time.Now().Before(entry.expiresAt), nil
}

func (s *MemoryStore) Delete(ctx context.Context, rawToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, hashToken(rawToken))
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := time.Now()
	for key, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, key)
			removed++
		}
	}
	return removed, nil
}
