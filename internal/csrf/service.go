package csrf

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"wareworks/internal/platform/metrics"
	dErrors "wareworks/pkg/domain-errors"
	"wareworks/pkg/secrets"
)

const (
	// DefaultHeaderName carries the public token on state-changing requests.
	DefaultHeaderName = "X-CSRF-Token"
	// DefaultCookieName carries the bound secret.
	DefaultCookieName = "csrf-secret"

	secretBytes = 32
)

// TokenStore defines the persistence interface for token records.
type TokenStore interface {
	Put(ctx context.Context, record *TokenRecord) error
	Get(ctx context.Context, token string) (*TokenRecord, error)
	Delete(ctx context.Context, token string) error
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.tokenTTL = ttl
		}
	}
}

func WithNames(headerName, cookieName string) Option {
	return func(g *Guard) {
		if headerName != "" {
			g.headerName = headerName
		}
		if cookieName != "" {
			g.cookieName = cookieName
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithClock overrides the time source. Test helper.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// Guard issues and validates session-bound CSRF token/secret pairs.
//
// The token is derived from the secret, so it can be handed to the client in
// the response body while the secret travels only in an HTTP-only cookie.
// Knowledge of the token alone is insufficient to pass validation.
type Guard struct {
	store      TokenStore
	logger     *slog.Logger
	tokenTTL   time.Duration
	headerName string
	cookieName string
	metrics    *metrics.Metrics
	now        func() time.Time
}

func New(store TokenStore, opts ...Option) (*Guard, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}

	g := &Guard{
		store:      store,
		logger:     slog.Default(),
		tokenTTL:   time.Hour,
		headerName: DefaultHeaderName,
		cookieName: DefaultCookieName,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// HeaderName returns the header the client must echo the token in.
func (g *Guard) HeaderName() string { return g.headerName }

// CookieName returns the cookie the secret is scoped to.
func (g *Guard) CookieName() string { return g.cookieName }

// TokenTTL returns the configured token lifetime.
func (g *Guard) TokenTTL() time.Duration { return g.tokenTTL }

// IssueToken creates a new token/secret pair and stores it.
// The secret goes into a scoped cookie; the token goes to the response body
// for the client to echo back in the header.
func (g *Guard) IssueToken(ctx context.Context) (token, secret string, err error) {
	secret, err = secrets.Generate(secretBytes)
	if err != nil {
		return "", "", err
	}

	now := g.now()
	token, err = secrets.DeriveToken(secret, strconv.FormatInt(now.UnixMilli(), 10))
	if err != nil {
		return "", "", err
	}

	record := &TokenRecord{
		Token:     token,
		Secret:    secret,
		CreatedAt: now,
		ExpiresAt: now.Add(g.tokenTTL),
	}
	if err := g.store.Put(ctx, record); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "could not store csrf token")
	}

	if g.metrics != nil {
		g.metrics.CSRFTokensIssued.Inc()
	}
	return token, secret, nil
}

// ValidateToken reports whether the token/secret pair is known, unexpired,
// and matching. Expired records are deleted on touch. Validation does not
// consume the token; a token may be validated any number of times before
// expiry.
func (g *Guard) ValidateToken(ctx context.Context, token, secret string) bool {
	if token == "" || secret == "" {
		return false
	}

	record, err := g.store.Get(ctx, token)
	if err != nil {
		g.logger.ErrorContext(ctx, "csrf token lookup failed", "error", err)
		return false
	}
	if record == nil {
		return false
	}

	if record.Expired(g.now()) {
		_ = g.store.Delete(ctx, token)
		return false
	}

	return secrets.Equal(record.Secret, secret)
}

// ValidateRequest applies the CSRF check to an HTTP request. Safe methods
// (GET/HEAD/OPTIONS) always pass since they change no state. For all other
// methods the token comes from the configured header and the secret from the
// configured cookie; both are required.
func (g *Guard) ValidateRequest(r *http.Request) error {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return nil
	}

	token := r.Header.Get(g.headerName)
	if token == "" {
		return dErrors.New(dErrors.CodeForbidden, "missing csrf token")
	}

	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return dErrors.New(dErrors.CodeForbidden, "missing csrf secret")
	}

	if !g.ValidateToken(r.Context(), token, cookie.Value) {
		return dErrors.New(dErrors.CodeForbidden, "invalid or expired csrf token")
	}
	return nil
}

// SecretCookie builds the Set-Cookie value carrying the secret.
func (g *Guard) SecretCookie(secret string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     g.cookieName,
		Value:    secret,
		Path:     "/",
		MaxAge:   int(g.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
