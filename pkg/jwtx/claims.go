package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAssertionTTL is how long a bearer assertion stays valid. Salesforce
// rejects assertions whose exp is more than a few minutes out.
const DefaultAssertionTTL = 3 * time.Minute

// BearerClaims are the claims of a JWT bearer assertion. Older token
// endpoints read the principal from "prn" rather than "sub", so both carry
// the username.
type BearerClaims struct {
	jwt.RegisteredClaims

	Principal string `json:"prn,omitempty"`
}

// NewBearerClaims builds minimally-correct assertion claims.
func NewBearerClaims(issuer, subject, audience string, ttl time.Duration, now time.Time) BearerClaims {
	return BearerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Principal: subject,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
