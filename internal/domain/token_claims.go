package domain

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// ParseTokenClaims reads the registered claims of an access token without
// verifying its signature. The server stays the authority on validity.
func ParseTokenClaims(raw string) (TokenClaims, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parse access token claims: %w", err)
	}

	result := TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	return result, nil
}

func (c TokenClaims) ExpiringSoon(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !c.ExpiresAt.After(now.Add(skew))
}
