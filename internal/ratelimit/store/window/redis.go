package window

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wareworks/internal/ratelimit/models"
)

// RedisWindowStore implements WindowStore on Redis using INCR with a window
// TTL, so counters are shared across instances and expire on their own
// (no sweep required).
type RedisWindowStore struct {
	client *redis.Client
}

// NewRedisWindowStore creates a Redis-backed fixed-window store from a URL.
func NewRedisWindowStore(url string) (*RedisWindowStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisWindowStore{client: client}, nil
}

// Allow counts a request against the key's current window.
func (s *RedisWindowStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// Only the request that opens the window sets the TTL.
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis window incr: %w", err)
	}
	count := int(incr.Val())

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	now := time.Now()
	resetAt := now.Add(ttl)

	result := &models.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(0, limit-count),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = retryAfterSeconds(now, resetAt)
	}
	return result, nil
}

// Reset clears the window for a key.
func (s *RedisWindowStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// DeleteExpired is a no-op: Redis evicts counters via TTL.
func (s *RedisWindowStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

// Close releases the underlying client.
func (s *RedisWindowStore) Close() error {
	return s.client.Close()
}
