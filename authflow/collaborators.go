package authflow

import (
	"context"
	"net/http"
)

// UserAgentLauncher presents the authorization page to the user and
// captures the redirect back to the client. Implementations own the
// interaction surface and its cancellation policy: a dismissed prompt or
// an expired wait surfaces as an error here and is mapped to
// AuthRequestFailed by the flow.
//
// Authorize must return exactly once per call, with either the full
// redirect URL (including its query string) or an error.
type UserAgentLauncher interface {
	Authorize(ctx context.Context, authorizationURL, callbackScheme string) (redirectURL string, err error)
}

// HTTPClient is the transport used for the token exchange. *http.Client
// satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// LauncherFunc adapts a plain function to the UserAgentLauncher interface.
type LauncherFunc func(ctx context.Context, authorizationURL, callbackScheme string) (string, error)

// Authorize implements UserAgentLauncher.
func (f LauncherFunc) Authorize(ctx context.Context, authorizationURL, callbackScheme string) (string, error) {
	return f(ctx, authorizationURL, callbackScheme)
}
