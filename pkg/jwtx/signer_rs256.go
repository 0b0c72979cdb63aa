package jwtx

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/sfconnect/pkg/cryptox"
)

// RS256Signer implements the Signer interface using RSA SHA-256.
type RS256Signer struct {
	key *rsa.PrivateKey
}

func newRS256Signer(pemKey []byte) (*RS256Signer, error) {
	key, err := cryptox.ParseRSAPrivateKey(pemKey)
	if err != nil {
		return nil, err
	}
	return &RS256Signer{key: key}, nil
}

func (s *RS256Signer) Alg() string { return jwt.SigningMethodRS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *RS256Signer) Sign(claims jwt.Claims) (string, error) {
	if s.key == nil {
		return "", errors.New("jwtx: nil RSA key")
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}

// PublicKey exposes the verification half, handy for tests and for
// printing the certificate to upload to the connected app.
func (s *RS256Signer) PublicKey() *rsa.PublicKey {
	return &s.key.PublicKey
}
