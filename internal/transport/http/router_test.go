package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareworks/internal/csrf"
	csrfstore "wareworks/internal/csrf/store"
	"wareworks/internal/notify"
	"wareworks/internal/pdf"
	"wareworks/internal/platform/config"
	"wareworks/internal/ratelimit/checker"
	ratelimitconfig "wareworks/internal/ratelimit/config"
	ratelimitmiddleware "wareworks/internal/ratelimit/middleware"
	"wareworks/internal/ratelimit/store/window"
	"wareworks/internal/storage"
	"wareworks/internal/submission/handler"
	"wareworks/internal/submission/models"
	"wareworks/internal/submission/service"
	"wareworks/internal/submission/store"
	"wareworks/internal/submission/token"
	httptransport "wareworks/internal/transport/http"
)

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _ pdf.Template, p *models.SubmissionPayload) (*models.GeneratedDocument, error) {
	return &models.GeneratedDocument{Bytes: []byte("%PDF-1.7 stub"), MIMEType: "application/pdf", Filename: "test.pdf"}, nil
}

type stubDispatcher struct{}

func (stubDispatcher) Transport() string                           { return "stub" }
func (stubDispatcher) Send(context.Context, *notify.Message) error { return nil }

type stubAppender struct{}

func (stubAppender) Append(context.Context, *models.SubmissionPayload) error { return nil }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	guard, err := csrf.New(csrfstore.New(), csrf.WithLogger(logger))
	require.NoError(t, err)

	limiter, err := checker.New(window.NewInMemoryWindowStore(), checker.WithLogger(logger))
	require.NoError(t, err)

	svc := service.New(
		stubGenerator{},
		stubDispatcher{},
		stubAppender{},
		store.NewInMemoryDocumentStore(time.Hour),
		token.NewIssuer("test-signing-key", time.Hour),
		config.Features{PDFGeneration: true, EmailNotifications: true},
		service.WithLogger(logger),
	)

	return httptransport.NewRouter(httptransport.Deps{
		Submission: handler.NewHandler(svc, logger),
		Config: handler.NewConfigHandler(handler.ConfigFeatures{PDFGeneration: true},
			ratelimitconfig.DefaultConfig(), []string{"en", "es"}, nil, logger),
		CSRF:      csrf.NewHandler(guard, false, logger),
		CSRFGuard: guard,
		Uploads:   storage.NewHandler(nil, logger),
		RateLimit: ratelimitmiddleware.New(limiter, logger),
		Logger:    logger,
	})
}

func validBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"legalFirstName":       "Maria",
		"legalLastName":        "Santos",
		"streetAddress":        "412 Dock Street",
		"city":                 "Tacoma",
		"state":                "WA",
		"zipCode":              "98402",
		"phoneNumber":          "253-555-0142",
		"socialSecurityNumber": "123-45-6789",
	})
	return body
}

// issueToken fetches a CSRF token and returns it with its secret cookie.
func issueToken(t *testing.T, router http.Handler) (string, *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp csrf.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf-secret" {
			return resp.Token, c
		}
	}
	t.Fatal("secret cookie not set")
	return "", nil
}

func TestHealth(t *testing.T) {
	router := newRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitRequiresCSRF(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitWithCSRFTokenSucceeds(t *testing.T) {
	router := newRouter(t)
	tok, cookie := issueToken(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", tok)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Details[models.StepPDFGeneration].Success)
}

func TestSubmitRateLimited(t *testing.T) {
	router := newRouter(t)
	tok, cookie := issueToken(t, router)

	submit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-CSRF-Token", tok)
		req.AddCookie(cookie)
		req.RemoteAddr = "198.51.100.9:4242"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		rec := submit()
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := submit()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestSubmitRejectsWrongContentType(t *testing.T) {
	router := newRouter(t)
	tok, cookie := issueToken(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-CSRF-Token", tok)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadsUnavailableWithoutStorage(t *testing.T) {
	router := newRouter(t)
	tok, cookie := issueToken(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", nil)
	req.Header.Set("X-CSRF-Token", tok)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConfigEndpoint(t *testing.T) {
	router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Features.PDFGeneration)
	assert.Equal(t, 3, resp.Limits["submission"].MaxRequests)
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
