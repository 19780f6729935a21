// Package discovery resolves an OIDC issuer's published metadata into
// the endpoint configuration an authentication flow needs. Only the
// endpoint locations are consumed; ID tokens are neither requested nor
// validated by this client.
package discovery

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-client/authflow"
	"github.com/pkg/errors"
)

// Parameters fetches {issuer}/.well-known/openid-configuration and
// returns AuthorizationParameters with the advertised authorization and
// token endpoints filled in. Pass a client via oidc.ClientContext to
// control the discovery transport.
func Parameters(ctx context.Context, issuer, clientID, redirectURI, callbackScheme string) (authflow.AuthorizationParameters, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return authflow.AuthorizationParameters{}, errors.Wrapf(err, "discover issuer %s", issuer)
	}

	parameters := authflow.ParametersFromEndpoint(provider.Endpoint(), clientID, redirectURI, callbackScheme)
	if err = parameters.Validate(); err != nil {
		return authflow.AuthorizationParameters{}, errors.Wrapf(err, "issuer %s advertised unusable endpoints", issuer)
	}
	return parameters, nil
}
