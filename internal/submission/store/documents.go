package store

import (
	"context"
	"sync"
	"time"

	"wareworks/internal/submission/models"
)

// documentEntry retains a generated PDF until its TTL elapses so the
// applicant can download what was generated for them.
type documentEntry struct {
	document  *models.GeneratedDocument
	expiresAt time.Time
}

// InMemoryDocumentStore holds generated documents keyed by submission id.
// Entries are bounded by TTL and the periodic expiry sweeper.
type InMemoryDocumentStore struct {
	mu      sync.RWMutex
	entries map[string]documentEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryDocumentStore creates a document store with the given retention.
func NewInMemoryDocumentStore(ttl time.Duration) *InMemoryDocumentStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InMemoryDocumentStore{
		entries: make(map[string]documentEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the store's time source. Test helper.
func (s *InMemoryDocumentStore) WithClock(now func() time.Time) *InMemoryDocumentStore {
	s.now = now
	return s
}

// Put retains a document under the submission id.
func (s *InMemoryDocumentStore) Put(_ context.Context, submissionID string, doc *models.GeneratedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[submissionID] = documentEntry{
		document:  doc,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Get returns the retained document, or nil when absent or expired.
func (s *InMemoryDocumentStore) Get(_ context.Context, submissionID string) (*models.GeneratedDocument, error) {
	s.mu.RLock()
	entry, ok := s.entries[submissionID]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.document, nil
}

// DeleteExpired removes documents past retention, for the periodic sweeper.
func (s *InMemoryDocumentStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}
