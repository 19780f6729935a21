package authflow

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Validation errors returned from AuthorizationParameters.Validate.
var (
	MissingAuthorizeURLErr   = errors.New("missing authorize url")
	MissingTokenURLErr       = errors.New("missing token url")
	MissingClientIDErr       = errors.New("missing client id")
	MissingRedirectURIErr    = errors.New("missing redirect uri")
	MissingCallbackSchemeErr = errors.New("missing callback scheme")
	InvalidAuthorizeURLErr   = errors.New("invalid authorize url")
	InvalidTokenURLErr       = errors.New("invalid token url")
	InvalidRedirectURIErr    = errors.New("invalid redirect uri")
)

// AuthorizationParameters holds the immutable configuration for one
// authentication attempt. The caller creates it once per attempt; the
// flow only reads it.
type AuthorizationParameters struct {
	// AuthorizeURL is the authorization endpoint the user agent is sent to.
	// Example: "https://auth.example.com/oauth/authorize"
	AuthorizeURL string

	// TokenURL is the token endpoint the authorization code is exchanged at.
	// Example: "https://auth.example.com/oauth/token"
	TokenURL string

	// ClientID identifies the public client requesting authorization.
	// Public clients carry no secret; PKCE is what binds the code to them.
	ClientID string

	// RedirectURI is where the authorization server sends the user agent
	// after consent. Must exactly match a URI registered for the client.
	RedirectURI string

	// CallbackScheme is the redirect-capture identifier handed to the
	// user-agent launcher so it can recognise the callback, e.g. a custom
	// URL scheme ("app") for native apps or a loopback host for CLI logins.
	CallbackScheme string

	// Scope is the space-separated set of permissions being requested.
	// Optional; omitted from the authorization URL when empty.
	Scope string

	// State is an opaque CSRF value echoed back by the authorization
	// server. Optional; omitted from the authorization URL when empty.
	// Generate one with pkce.GenerateState.
	State string
}

// ParametersFromEndpoint builds AuthorizationParameters from a
// golang.org/x/oauth2 endpoint, for callers that already hold one.
func ParametersFromEndpoint(endpoint oauth2.Endpoint, clientID, redirectURI, callbackScheme string) AuthorizationParameters {
	return AuthorizationParameters{
		AuthorizeURL:   endpoint.AuthURL,
		TokenURL:       endpoint.TokenURL,
		ClientID:       clientID,
		RedirectURI:    redirectURI,
		CallbackScheme: callbackScheme,
	}
}

// Validate checks the non-empty and well-formed URI invariants before a
// flow starts. A failed validation means the attempt never leaves the
// idle state.
func (p *AuthorizationParameters) Validate() error {
	if strings.TrimSpace(p.AuthorizeURL) == "" {
		return MissingAuthorizeURLErr
	}
	if strings.TrimSpace(p.TokenURL) == "" {
		return MissingTokenURLErr
	}
	if strings.TrimSpace(p.ClientID) == "" {
		return MissingClientIDErr
	}
	if strings.TrimSpace(p.RedirectURI) == "" {
		return MissingRedirectURIErr
	}
	if strings.TrimSpace(p.CallbackScheme) == "" {
		return MissingCallbackSchemeErr
	}
	if !absoluteURL(p.AuthorizeURL) {
		return InvalidAuthorizeURLErr
	}
	if !absoluteURL(p.TokenURL) {
		return InvalidTokenURLErr
	}
	if !absoluteURL(p.RedirectURI) {
		return InvalidRedirectURIErr
	}
	return nil
}

func absoluteURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
