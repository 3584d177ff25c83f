package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	dErrors "wareworks/pkg/domain-errors"
)

// Generate creates a cryptographically secure random secret.
// Returns a hex-encoded string of the requested byte length, suitable for use
// as CSRF secrets, API keys, etc.
func Generate(numBytes int) (string, error) {
	if numBytes <= 0 {
		numBytes = 32
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return hex.EncodeToString(buf), nil
}

// DeriveToken computes a keyed BLAKE2b-256 hash of message under key.
// The result is hex-encoded. Knowledge of the token does not reveal the key,
// so the token can be handed to clients while the key stays in a cookie.
func DeriveToken(key, message string) (string, error) {
	if key == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "derivation key cannot be empty")
	}
	keyBytes, err := hex.DecodeString(key)
	if err != nil {
		// Non-hex keys are used as-is; hex secrets are decoded so the hash
		// key stays within blake2b's 64-byte limit.
		keyBytes = []byte(key)
	}
	if len(keyBytes) > blake2b.Size {
		keyBytes = keyBytes[:blake2b.Size]
	}
	h, err := blake2b.New256(keyBytes)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not initialize token hash")
	}
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal compares two secrets in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
