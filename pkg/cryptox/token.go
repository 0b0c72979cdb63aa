package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// TokenSize256 provides 256 bits of entropy (43 chars base64url).
const TokenSize256 = 32

// GenerateToken creates a cryptographically secure random token of the specified byte length.
// The token is returned as a base64url-encoded string (URL-safe, no padding).
// Returns an error if the random number generator fails.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DigestKeySize is the key length accepted by SecretDigest.
const DigestKeySize = 32

// NewDigestKey returns a random key for SecretDigest.
func NewDigestKey() ([]byte, error) {
	key := make([]byte, DigestKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate digest key: %w", err)
	}
	return key, nil
}

// SecretDigest returns a keyed BLAKE2b-256 digest of secret. Two digests made
// with the same key are equal exactly when the secrets are equal, so callers
// can keep the digest around instead of the plaintext.
func SecretDigest(key []byte, secret string) ([]byte, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: digest: %w", err)
	}
	_, _ = h.Write([]byte(secret))
	return h.Sum(nil), nil
}

// DigestEqual reports whether two digests are identical.
func DigestEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
