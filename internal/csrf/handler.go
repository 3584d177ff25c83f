package csrf

import (
	"log/slog"
	"net/http"

	"wareworks/pkg/httputil"
)

// Handler serves the token-issuance endpoint.
type Handler struct {
	guard        *Guard
	logger       *slog.Logger
	secureCookie bool
}

func NewHandler(guard *Guard, secureCookie bool, logger *slog.Logger) *Handler {
	return &Handler{
		guard:        guard,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// HandleIssueToken issues a fresh token/secret pair. The secret is set as an
// HTTP-only cookie; the token is returned in the body for the client to echo
// back in the configured header.
func (h *Handler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, secret, err := h.guard.IssueToken(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "csrf token issuance failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.guard.SecretCookie(secret, h.secureCookie))
	httputil.WriteJSON(w, http.StatusOK, &TokenResponse{
		Success:    true,
		Token:      token,
		TokenName:  h.guard.CookieName(),
		HeaderName: h.guard.HeaderName(),
	})
}
