package config

import (
	"os"
	"time"
)

const (
	appNameVar      = "APP_NAME"
	issuerVar       = "ISSUER"
	authorizeURLVar = "AUTHORIZE_URL"
	tokenURLVar     = "TOKEN_URL"
	clientIDVar     = "CLIENT_ID"
	redirectURIVar  = "REDIRECT_URI"
	scopeVar        = "SCOPE"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go OAuth Login")
}

// GetIssuer returns the OIDC issuer URL. When set, the authorize and
// token endpoints are resolved through discovery instead of
// AUTHORIZE_URL / TOKEN_URL.
func (EnvVars) GetIssuer() string {
	return GetEnv(issuerVar, "")
}

func (EnvVars) GetAuthorizeURL() string {
	return GetEnv(authorizeURLVar, "")
}

func (EnvVars) GetTokenURL() string {
	return GetEnv(tokenURLVar, "")
}

func (EnvVars) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

// GetRedirectURI returns the registered loopback redirect URI the local
// callback server listens on.
func (EnvVars) GetRedirectURI() string {
	return GetEnv(redirectURIVar, "http://localhost:8765/callback")
}

func (EnvVars) GetScope() string {
	return GetEnv(scopeVar, "")
}

func (EnvVars) GetRedirectTimeout() time.Duration {
	return 5 * time.Minute
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	return 30 * time.Second
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
