// Package jwtx signs the JWT bearer assertions used by the OAuth 2.0
// JWT Bearer Token flow (RFC 7523).
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(jwt.Claims) (string, error)
}

var (
	ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported signing algorithm")
	ErrMissingIssuer        = errors.New("jwtx: issuer is required")
	ErrMissingSubject       = errors.New("jwtx: subject is required")
	ErrMissingAudience      = errors.New("jwtx: audience is required")
)

// NewSignerRS256 creates an RS256 signer from PEM bytes.
func NewSignerRS256(pemKey []byte) (Signer, error) {
	return newRS256Signer(pemKey)
}

// AssertionOptions mirrors the knobs a bearer assertion needs.
type AssertionOptions struct {
	Issuer    string
	Audience  string
	Subject   string
	Expiry    time.Duration // zero means DefaultAssertionTTL
	Algorithm string        // empty means RS256
	Now       time.Time     // zero means time.Now()
}

// SignAssertion builds bearer claims from opts and signs them with the PEM
// private key. It is synchronous and does no network I/O.
func SignAssertion(pemKey []byte, opts AssertionOptions) (string, error) {
	switch {
	case opts.Issuer == "":
		return "", ErrMissingIssuer
	case opts.Subject == "":
		return "", ErrMissingSubject
	case opts.Audience == "":
		return "", ErrMissingAudience
	}

	alg := opts.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodRS256.Alg()
	}
	if alg != jwt.SigningMethodRS256.Alg() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}

	signer, err := NewSignerRS256(pemKey)
	if err != nil {
		return "", err
	}

	ttl := opts.Expiry
	if ttl <= 0 {
		ttl = DefaultAssertionTTL
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	return signer.Sign(NewBearerClaims(opts.Issuer, opts.Subject, opts.Audience, ttl, now))
}
