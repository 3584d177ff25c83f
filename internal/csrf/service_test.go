package csrf_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareworks/internal/csrf"
	"wareworks/internal/csrf/store"
	dErrors "wareworks/pkg/domain-errors"
)

func newGuard(t *testing.T, opts ...csrf.Option) *csrf.Guard {
	t.Helper()
	opts = append([]csrf.Option{csrf.WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	guard, err := csrf.New(store.New(), opts...)
	require.NoError(t, err)
	return guard
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()

	t.Run("issues distinct hex pairs", func(t *testing.T) {
		guard := newGuard(t)

		token, secret, err := guard.IssueToken(ctx)
		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.Len(t, secret, 64)
		assert.NotEqual(t, token, secret)

		token2, secret2, err := guard.IssueToken(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, token, token2)
		assert.NotEqual(t, secret, secret2)
	})
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh pair validates", func(t *testing.T) {
		guard := newGuard(t)
		token, secret, err := guard.IssueToken(ctx)
		require.NoError(t, err)
		assert.True(t, guard.ValidateToken(ctx, token, secret))
	})

	t.Run("validation does not consume the token", func(t *testing.T) {
		guard := newGuard(t)
		token, secret, err := guard.IssueToken(ctx)
		require.NoError(t, err)
		assert.True(t, guard.ValidateToken(ctx, token, secret))
		assert.True(t, guard.ValidateToken(ctx, token, secret))
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		guard := newGuard(t)
		token, _, err := guard.IssueToken(ctx)
		require.NoError(t, err)
		assert.False(t, guard.ValidateToken(ctx, token, "wrong"))
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		guard := newGuard(t)
		_, secret, err := guard.IssueToken(ctx)
		require.NoError(t, err)
		assert.False(t, guard.ValidateToken(ctx, "wrong", secret))
	})

	t.Run("empty inputs rejected", func(t *testing.T) {
		guard := newGuard(t)
		token, secret, err := guard.IssueToken(ctx)
		require.NoError(t, err)
		assert.False(t, guard.ValidateToken(ctx, "", secret))
		assert.False(t, guard.ValidateToken(ctx, token, ""))
	})

	t.Run("expiry is strictly enforced", func(t *testing.T) {
		now := time.Now()
		guard := newGuard(t,
			csrf.WithTokenTTL(time.Hour),
			csrf.WithClock(func() time.Time { return now }),
		)

		token, secret, err := guard.IssueToken(ctx)
		require.NoError(t, err)

		now = now.Add(time.Hour + time.Second)
		assert.False(t, guard.ValidateToken(ctx, token, secret))

		// Expired record was deleted on touch; even time travel back cannot
		// revive it.
		now = now.Add(-2 * time.Second)
		assert.False(t, guard.ValidateToken(ctx, token, secret))
	})
}

func TestValidateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("safe methods always pass", func(t *testing.T) {
		guard := newGuard(t)
		for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
			req := httptest.NewRequest(method, "/api/config", nil)
			assert.NoError(t, guard.ValidateRequest(req), method)
		}
	})

	t.Run("post without token rejected", func(t *testing.T) {
		guard := newGuard(t)
		req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
		err := guard.ValidateRequest(req)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("post without secret cookie rejected", func(t *testing.T) {
		guard := newGuard(t)
		token, _, err := guard.IssueToken(ctx)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
		req.Header.Set(guard.HeaderName(), token)
		assert.Error(t, guard.ValidateRequest(req))
	})

	t.Run("post with valid pair passes", func(t *testing.T) {
		guard := newGuard(t)
		token, secret, err := guard.IssueToken(ctx)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
		req.Header.Set(guard.HeaderName(), token)
		req.AddCookie(&http.Cookie{Name: guard.CookieName(), Value: secret})
		assert.NoError(t, guard.ValidateRequest(req))
	})

	t.Run("token alone is not a bearer credential", func(t *testing.T) {
		guard := newGuard(t)
		token, _, err := guard.IssueToken(ctx)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
		req.Header.Set(guard.HeaderName(), token)
		req.AddCookie(&http.Cookie{Name: guard.CookieName(), Value: "guessed"})
		assert.Error(t, guard.ValidateRequest(req))
	})
}

func TestSecretCookie(t *testing.T) {
	guard := newGuard(t, csrf.WithTokenTTL(30*time.Minute))
	cookie := guard.SecretCookie("s3cret", true)

	assert.Equal(t, guard.CookieName(), cookie.Name)
	assert.Equal(t, "s3cret", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((30 * time.Minute).Seconds()), cookie.MaxAge)
}

func TestHandler(t *testing.T) {
	guard := newGuard(t)
	h := csrf.NewHandler(guard, false, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.HandleIssueToken(rec, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"headerName":"X-CSRF-Token"`)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, guard.CookieName(), cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}
