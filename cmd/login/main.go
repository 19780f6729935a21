package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/authflow"
	"github.com/jrsteele09/go-auth-client/browser"
	"github.com/jrsteele09/go-auth-client/discovery"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/pkce"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Login failed")
	}
}

func run() error {
	c := config.New()
	displayAppname(c.GetAppName())

	// Ctrl-C cancels the wait for the authorization redirect.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parameters, err := resolveParameters(ctx, c)
	if err != nil {
		return err
	}

	launcher := browser.NewLauncher(browser.WithRedirectTimeout(c.GetRedirectTimeout()))
	authenticator, err := authflow.NewAuthenticator(launcher, &http.Client{Timeout: c.GetHTTPTimeout()})
	if err != nil {
		return err
	}

	fmt.Println("Opening browser for authentication...")
	response, err := authenticator.Authenticate(ctx, parameters)
	if err != nil {
		if flowErr, ok := authflow.AsFlowError(err); ok {
			log.Error().
				Str("kind", string(flowErr.Kind)).
				Str("attempt_id", flowErr.AttemptID).
				Str("stage", flowErr.Stage).
				Msg("Authentication attempt failed")
		}
		return err
	}

	printResult(response)
	return nil
}

// resolveParameters builds the flow configuration from the environment,
// preferring OIDC discovery when an issuer is configured.
func resolveParameters(ctx context.Context, c config.Config) (authflow.AuthorizationParameters, error) {
	redirectURI := c.GetRedirectURI()
	callbackScheme, err := schemeOf(redirectURI)
	if err != nil {
		return authflow.AuthorizationParameters{}, err
	}

	var parameters authflow.AuthorizationParameters
	if issuer := c.GetIssuer(); issuer != "" {
		parameters, err = discovery.Parameters(ctx, issuer, c.GetClientID(), redirectURI, callbackScheme)
		if err != nil {
			return authflow.AuthorizationParameters{}, err
		}
	} else {
		parameters = authflow.AuthorizationParameters{
			AuthorizeURL:   c.GetAuthorizeURL(),
			TokenURL:       c.GetTokenURL(),
			ClientID:       c.GetClientID(),
			RedirectURI:    redirectURI,
			CallbackScheme: callbackScheme,
		}
	}

	parameters.Scope = c.GetScope()

	state, err := pkce.GenerateState()
	if err != nil {
		return authflow.AuthorizationParameters{}, err
	}
	parameters.State = state

	if err = parameters.Validate(); err != nil {
		return authflow.AuthorizationParameters{}, errors.Wrap(err, "set ISSUER or AUTHORIZE_URL/TOKEN_URL, plus CLIENT_ID")
	}
	return parameters, nil
}

func printResult(response *authflow.AccessTokenResponse) {
	fmt.Println("Authentication succeeded")
	fmt.Printf("Access token: %s\n", response.AccessToken)
	fmt.Printf("Expires in:   %ds\n", response.ExpiresIn)
	if response.Scope != "" {
		fmt.Printf("Scope:        %s\n", response.Scope)
	}

	// JWT-shaped tokens carry their own expiry; show it when available.
	if claims, err := token.Inspect(response.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Printf("Token expiry: %s (in %s)\n", claims.ExpiresAt.Format(time.RFC3339), claims.RemainingLifetime(time.Now()).Round(time.Second))
	}
}

func schemeOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "parse redirect uri")
	}
	if u.Scheme == "" {
		return "", errors.Errorf("redirect uri %q has no scheme", rawURL)
	}
	return u.Scheme, nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
