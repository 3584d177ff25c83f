package store

import (
	"context"
	"sync"
	"time"

	"wareworks/internal/csrf"
)

// InMemoryTokenStore keeps CSRF token records in memory, keyed by token.
// Safe for concurrent use; entries are bounded by the expiry sweeper.
type InMemoryTokenStore struct {
	mu      sync.RWMutex
	records map[string]*csrf.TokenRecord
}

// New constructs an empty in-memory token store.
func New() *InMemoryTokenStore {
	return &InMemoryTokenStore{records: make(map[string]*csrf.TokenRecord)}
}

// Put stores a record keyed by its token.
func (s *InMemoryTokenStore) Put(_ context.Context, record *csrf.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Token] = record
	return nil
}

// Get returns the record for a token, or nil when absent.
func (s *InMemoryTokenStore) Get(_ context.Context, token string) (*csrf.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[token], nil
}

// Delete removes a token record. Missing tokens are a no-op.
func (s *InMemoryTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

// Len reports the number of stored records.
func (s *InMemoryTokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// DeleteExpired removes records past their expiry, for the periodic sweeper.
func (s *InMemoryTokenStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, record := range s.records {
		if record.Expired(now) {
			delete(s.records, token)
			removed++
		}
	}
	return removed, nil
}
