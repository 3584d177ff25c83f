package window

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("first request allowed with full remaining", func(t *testing.T) {
		store := NewInMemoryWindowStore()
		result, err := store.Allow(ctx, "ip:203.0.113.7:submission", 3, 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3, result.Limit)
		assert.Equal(t, 2, result.Remaining)
		assert.Zero(t, result.RetryAfter)
	})

	t.Run("denies only past the limit", func(t *testing.T) {
		store := NewInMemoryWindowStore()
		for i := 0; i < 3; i++ {
			result, err := store.Allow(ctx, "k", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		}

		result, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Zero(t, result.Remaining)
		assert.Positive(t, result.RetryAfter)
	})

	t.Run("window reset restores full budget", func(t *testing.T) {
		now := time.Now()
		store := NewInMemoryWindowStore().WithClock(func() time.Time { return now })

		for i := 0; i < 4; i++ {
			_, err := store.Allow(ctx, "k", 3, time.Minute)
			require.NoError(t, err)
		}

		now = now.Add(time.Minute + time.Second)
		result, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 2, result.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := NewInMemoryWindowStore()
		for i := 0; i < 5; i++ {
			_, err := store.Allow(ctx, "a", 3, time.Minute)
			require.NoError(t, err)
		}
		result, err := store.Allow(ctx, "b", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("retry after rounds up to whole seconds", func(t *testing.T) {
		now := time.Now()
		store := NewInMemoryWindowStore().WithClock(func() time.Time { return now })

		_, err := store.Allow(ctx, "k", 1, 90*time.Second)
		require.NoError(t, err)

		now = now.Add(500 * time.Millisecond)
		result, err := store.Allow(ctx, "k", 1, 90*time.Second)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 90, result.RetryAfter)
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWindowStore()

	for i := 0; i < 5; i++ {
		_, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
	}
	require.NoError(t, store.Reset(ctx, "k"))

	result, err := store.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 2, result.Remaining)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewInMemoryWindowStore().WithClock(func() time.Time { return now })

	_, err := store.Allow(ctx, "short", 3, time.Minute)
	require.NoError(t, err)
	_, err = store.Allow(ctx, "long", 3, time.Hour)
	require.NoError(t, err)

	removed, err := store.DeleteExpired(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// The surviving window keeps its count.
	result, err := store.Allow(ctx, "long", 3, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Remaining)
}
