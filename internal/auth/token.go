// Package auth maintains the client's auth session: the credential slot,
// token expiry checks, and credential persistence.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/basewire/basewire-go/internal/constants"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// ParseClaims extracts the claims of a token without verifying its
// signature. The client never validates tokens; it only inspects the exp
// claim to decide when a refresh is due.
func ParseClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	parser := jwt.NewParser()

	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	return claims, nil
}

// TokenExpired reports whether the token is expired or will expire within
// the buffer. Malformed tokens and tokens without an exp claim count as
// expired.
func TokenExpired(token string, buffer time.Duration) bool {
	claims, err := ParseClaims(token)
	if err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return time.Now().Add(buffer).After(exp.Time)
}

// Credential couples an auth token with the record it was issued for.
type Credential struct {
	Token  string           `json:"token"`
	Record *basewire.Record `json:"record,omitempty"`
}

// Valid reports whether the credential holds a usable token.
func (c *Credential) Valid() bool {
	if c == nil || c.Token == "" {
		return false
	}

	return !TokenExpired(c.Token, constants.TokenExpiryBuffer)
}
