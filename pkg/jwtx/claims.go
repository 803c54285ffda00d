package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short-lived access tokens, longer refresh window.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Authentication Method Reference values embedded in the "amr" claim.
const (
	AMRPassword = "pwd"
	AMRMFA      = "mfa"
	AMRRefresh  = "refresh"
)

// Claims are the access-token claims used across the platform. Changes here
// must stay additive to preserve compatibility with issued tokens.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the session ID, stable across refresh rotations.
	SID string `json:"sid,omitempty"`

	// AMR lists how the user authenticated, e.g. ["pwd","mfa"]. Lets
	// downstream services require MFA for sensitive operations.
	AMR []string `json:"amr,omitempty"`

	// Email is the authenticated user's login email.
	Email string `json:"email,omitempty"`

	// Name is the user's display name.
	Name string `json:"name,omitempty"`
}

// NewAccessClaims builds minimally-correct access token claims.
func NewAccessClaims(
	subject, sid string,
	amr []string,
	ttl time.Duration,
	issuer string,
	email, name string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:   sid,
		AMR:   amr,
		Email: email,
		Name:  name,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token is inside its validity window.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
