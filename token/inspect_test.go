package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/stretchr/testify/require"
)

func signedTestToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return raw
}

// TestInspect_RegisteredClaims tests claim extraction from a JWT access
// token
func TestInspect_RegisteredClaims(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	expires := issued.Add(time.Hour)

	raw := signedTestToken(t, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "https://auth.example.com",
		Audience:  jwt.ClaimStrings{"api"},
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	})

	claims, err := token.Inspect(raw)

	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "https://auth.example.com", claims.Issuer)
	require.Equal(t, []string{"api"}, claims.Audience)
	require.True(t, claims.IssuedAt.Equal(issued))
	require.True(t, claims.ExpiresAt.Equal(expires))
}

// TestInspect_OpaqueToken tests that non-JWT tokens are reported as such
func TestInspect_OpaqueToken(t *testing.T) {
	_, err := token.Inspect("tok_xyz")

	require.ErrorIs(t, err, token.ErrNotJWT)
}

// TestRemainingLifetime tests lifetime reporting against a fixed clock
func TestRemainingLifetime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	live := &token.Claims{ExpiresAt: now.Add(30 * time.Minute)}
	require.Equal(t, 30*time.Minute, live.RemainingLifetime(now))

	expired := &token.Claims{ExpiresAt: now.Add(-time.Minute)}
	require.Zero(t, expired.RemainingLifetime(now))

	noExpiry := &token.Claims{}
	require.Zero(t, noExpiry.RemainingLifetime(now))
}
