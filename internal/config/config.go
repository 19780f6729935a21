package config

import "time"

// Config describes everything the login CLI needs to run one
// authentication attempt. Either an issuer (resolved through OIDC
// discovery) or explicit authorize and token URLs must be provided.
type Config interface {
	GetAppName() string
	GetIssuer() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetClientID() string
	GetRedirectURI() string
	GetScope() string
	GetRedirectTimeout() time.Duration
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
