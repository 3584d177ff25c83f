// Package token issues and verifies the short-lived signed tokens that gate
// generated-document downloads.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "wareworks/pkg/domain-errors"
)

const downloadScope = "document:download"

// DownloadClaims carries the submission a token grants access to.
type DownloadClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies download tokens with a shared HS256 key.
type Issuer struct {
	signingKey []byte
	ttl        time.Duration
}

func NewIssuer(signingKey string, ttl time.Duration) *Issuer {
	return &Issuer{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue creates a token granting download access to one submission's
// generated documents. Token lifetime matches the document cache retention.
func (i *Issuer) Issue(submissionID string) (string, error) {
	now := time.Now()
	claims := DownloadClaims{
		Scope: downloadScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   submissionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
}

// Verify checks the signature and expiry and returns the submission ID the
// token was issued for.
func (i *Issuer) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "missing download token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "download token expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid download token")
	}

	claims, ok := parsed.Claims.(*DownloadClaims)
	if !ok || !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid download token")
	}
	if claims.Scope != downloadScope || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid download token")
	}
	return claims.Subject, nil
}
