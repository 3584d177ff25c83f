package csrf

import "time"

// TokenRecord pairs a public token with its cookie-bound secret.
// The token is the only public-facing artifact; the secret never leaves the
// server except inside an HTTP-only, same-site-strict cookie.
type TokenRecord struct {
	Token     string
	Secret    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is past its lifetime at the given time.
func (r *TokenRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// TokenResponse is the body of the token-issuance endpoint. TokenName and
// HeaderName tell the client where to echo the token back.
type TokenResponse struct {
	Success    bool   `json:"success"`
	Token      string `json:"token"`
	TokenName  string `json:"tokenName"`
	HeaderName string `json:"headerName"`
}
