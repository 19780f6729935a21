package authflow

import (
	"time"

	"golang.org/x/oauth2"
)

// AccessTokenResponse represents a successful token exchange, the
// terminal artifact of the flow. Ownership passes to the caller; the
// library keeps no copy and performs no refresh or revocation.
type AccessTokenResponse struct {
	// AccessToken is the token used to access protected resources.
	// Usage: "Authorization: Bearer <access_token>" header.
	AccessToken string `json:"access_token"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`

	// TokenType indicates how to use the access token, normally "bearer".
	// Optional on the wire; defaulted when converting to an oauth2.Token.
	TokenType string `json:"token_type,omitempty"`

	// RefreshToken is passed through when the server includes one. The
	// library never uses it; refresh flows belong to the caller.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope is the granted permission set, which may be narrower than
	// the requested one.
	Scope string `json:"scope,omitempty"`
}

// valid reports whether the decoded body satisfies the wire contract:
// a non-empty access token plus a positive expiry.
func (r *AccessTokenResponse) valid() bool {
	return r.AccessToken != "" && r.ExpiresIn > 0
}

// Expiry returns the absolute expiry time relative to now.
func (r *AccessTokenResponse) Expiry(now time.Time) time.Time {
	return now.Add(time.Duration(r.ExpiresIn) * time.Second)
}

// Token converts the response into a golang.org/x/oauth2 token so it can
// feed any TokenSource based client.
func (r *AccessTokenResponse) Token() *oauth2.Token {
	tokenType := r.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    tokenType,
		RefreshToken: r.RefreshToken,
		Expiry:       r.Expiry(time.Now()),
	}
}
