// Package token offers best-effort inspection of JWT-shaped access
// tokens for diagnostics. Claims are read without signature
// verification and must never be used to make trust decisions; validating
// tokens is the resource server's job, not this client's.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrNotJWT is returned for opaque access tokens that do not have the
// three-part JWT shape.
var ErrNotJWT = errors.New("access token is not a JWT")

// Claims holds the registered claims of an inspected token. Zero values
// mean the claim was absent.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes the registered claims of a JWT access token without
// verifying its signature.
func Inspect(raw string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &registered); err != nil {
		return nil, errors.Wrap(ErrNotJWT, err.Error())
	}

	claims := &Claims{
		Subject:  registered.Subject,
		Issuer:   registered.Issuer,
		Audience: []string(registered.Audience),
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

// RemainingLifetime reports how long the token stays valid from now,
// zero when the exp claim is absent or already passed.
func (c *Claims) RemainingLifetime(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || !c.ExpiresAt.After(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
