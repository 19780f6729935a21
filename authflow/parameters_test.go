package authflow_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/authflow"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// TestParameters_Validate tests the non-empty and well-formed URI
// invariants
func TestParameters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*authflow.AuthorizationParameters)
		wantErr error
	}{
		{name: "valid", mutate: func(*authflow.AuthorizationParameters) {}},
		{name: "missing authorize url", mutate: func(p *authflow.AuthorizationParameters) { p.AuthorizeURL = "" }, wantErr: authflow.MissingAuthorizeURLErr},
		{name: "missing token url", mutate: func(p *authflow.AuthorizationParameters) { p.TokenURL = " " }, wantErr: authflow.MissingTokenURLErr},
		{name: "missing client id", mutate: func(p *authflow.AuthorizationParameters) { p.ClientID = "" }, wantErr: authflow.MissingClientIDErr},
		{name: "missing redirect uri", mutate: func(p *authflow.AuthorizationParameters) { p.RedirectURI = "" }, wantErr: authflow.MissingRedirectURIErr},
		{name: "missing callback scheme", mutate: func(p *authflow.AuthorizationParameters) { p.CallbackScheme = "" }, wantErr: authflow.MissingCallbackSchemeErr},
		{name: "relative authorize url", mutate: func(p *authflow.AuthorizationParameters) { p.AuthorizeURL = "/oauth/authorize" }, wantErr: authflow.InvalidAuthorizeURLErr},
		{name: "malformed token url", mutate: func(p *authflow.AuthorizationParameters) { p.TokenURL = "://broken" }, wantErr: authflow.InvalidTokenURLErr},
		{name: "relative redirect uri", mutate: func(p *authflow.AuthorizationParameters) { p.RedirectURI = "callback" }, wantErr: authflow.InvalidRedirectURIErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := defaultParameters()
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestParametersFromEndpoint tests the oauth2.Endpoint constructor
func TestParametersFromEndpoint(t *testing.T) {
	endpoint := oauth2.Endpoint{
		AuthURL:  testAuthorizeURL,
		TokenURL: testTokenURL,
	}

	params := authflow.ParametersFromEndpoint(endpoint, testClientID, testRedirectURI, testCallbackScheme)

	require.NoError(t, params.Validate())
	require.Equal(t, testAuthorizeURL, params.AuthorizeURL)
	require.Equal(t, testTokenURL, params.TokenURL)
}

// TestAccessTokenResponse_Token tests the oauth2.Token conversion
func TestAccessTokenResponse_Token(t *testing.T) {
	response := authflow.AccessTokenResponse{
		AccessToken: "tok_xyz",
		ExpiresIn:   3600,
	}

	token := response.Token()

	require.Equal(t, "tok_xyz", token.AccessToken)
	require.Equal(t, "bearer", token.TokenType, "token type defaults to bearer")
	require.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, 5*time.Second)
	require.True(t, token.Valid())
}
