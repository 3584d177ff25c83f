package window

import (
	"context"
	"math"
	"sync"
	"time"

	"wareworks/internal/ratelimit/models"
)

// InMemoryWindowStore implements WindowStore using fixed counting windows.
// For multi-instance deployments, use RedisWindowStore instead.
type InMemoryWindowStore struct {
	mu      sync.Mutex
	windows map[string]*fixedWindow
	now     func() time.Time // injectable for tests
}

// fixedWindow tallies requests within a reset-on-expiry interval.
type fixedWindow struct {
	start  time.Time
	window time.Duration
	count  int
}

func (fw *fixedWindow) elapsed(now time.Time) bool {
	return !now.Before(fw.start.Add(fw.window))
}

// NewInMemoryWindowStore creates a new in-memory fixed-window store.
func NewInMemoryWindowStore() *InMemoryWindowStore {
	return &InMemoryWindowStore{
		windows: make(map[string]*fixedWindow),
		now:     time.Now,
	}
}

// WithClock overrides the store's time source. Test helper.
func (s *InMemoryWindowStore) WithClock(now func() time.Time) *InMemoryWindowStore {
	s.now = now
	return s
}

// Allow counts a request against the key's current window and reports whether
// it is within limit. A fresh window starts on the first request for a key or
// once the previous window has elapsed.
func (s *InMemoryWindowStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	fw, ok := s.windows[key]
	if !ok || fw.elapsed(now) || fw.window != window {
		fw = &fixedWindow{start: now, window: window}
		s.windows[key] = fw
	}
	fw.count++

	resetAt := fw.start.Add(fw.window)
	result := &models.RateLimitResult{
		Allowed:   fw.count <= limit,
		Limit:     limit,
		Remaining: max(0, limit-fw.count),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = retryAfterSeconds(now, resetAt)
	}
	return result, nil
}

// Reset clears the window for a key.
func (s *InMemoryWindowStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// DeleteExpired removes entries whose window has fully elapsed.
// The scan snapshots candidate keys under the lock but does only O(1) work
// per entry, so request traffic is not blocked behind it.
func (s *InMemoryWindowStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, fw := range s.windows {
		if fw.elapsed(now) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed, nil
}

// retryAfterSeconds rounds up so a client retrying after the advertised delay
// always lands in a fresh window.
func retryAfterSeconds(now, resetAt time.Time) int {
	seconds := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if seconds < 0 {
		return 0
	}
	return seconds
}
