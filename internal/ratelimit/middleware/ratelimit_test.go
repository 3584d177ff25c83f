package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareworks/internal/ratelimit/models"
)

type stubLimiter struct {
	result *models.RateLimitResult
	key    string
	class  models.EndpointClass
}

func (s *stubLimiter) Check(_ context.Context, clientKey string, class models.EndpointClass) (*models.RateLimitResult, error) {
	s.key = clientKey
	s.class = class
	return s.result, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed request passes with headers", func(t *testing.T) {
		limiter := &stubLimiter{result: &models.RateLimitResult{
			Allowed:   true,
			Limit:     3,
			Remaining: 2,
			ResetAt:   time.Unix(1900000000, 0),
		}}
		mw := New(limiter, slog.New(slog.DiscardHandler))

		rec := httptest.NewRecorder()
		mw.RateLimit(models.ClassSubmission)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/submit", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "1900000000", rec.Header().Get("X-RateLimit-Reset"))
		assert.Equal(t, models.ClassSubmission, limiter.class)
	})

	t.Run("rejected request gets 429 with retry-after", func(t *testing.T) {
		limiter := &stubLimiter{result: &models.RateLimitResult{
			Allowed:    false,
			Limit:      3,
			Remaining:  0,
			ResetAt:    time.Now().Add(time.Minute),
			RetryAfter: 60,
		}}
		mw := New(limiter, slog.New(slog.DiscardHandler))

		rec := httptest.NewRecorder()
		mw.RateLimit(models.ClassSubmission)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/submit", nil))

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})
}
