// Package browser implements the user-agent launcher for CLI and native
// logins: it serves the OAuth redirect on a loopback HTTP listener,
// opens the system browser at the authorization URL, and hands the
// captured callback URL back to the flow.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/jrsteele09/go-auth-client/authflow"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/skratchdot/open-golang/open"
)

const defaultRedirectTimeout = 5 * time.Minute

var _ authflow.UserAgentLauncher = (*Launcher)(nil)

// Launcher opens the system browser and captures the authorization
// redirect on the loopback interface. One Launcher can serve many
// attempts; each Authorize call runs its own callback server.
type Launcher struct {
	timeout time.Duration
	openURL func(string) error
}

// LauncherOption defines a function type to modify a Launcher.
type LauncherOption func(*Launcher)

// WithRedirectTimeout bounds how long Authorize waits for the user to
// complete the authorization page.
func WithRedirectTimeout(timeout time.Duration) LauncherOption {
	return func(l *Launcher) {
		l.timeout = timeout
	}
}

// WithOpenURL replaces the system browser command (primarily for testing).
func WithOpenURL(openURL func(string) error) LauncherOption {
	return func(l *Launcher) {
		l.openURL = openURL
	}
}

// NewLauncher creates a Launcher with the default browser opener and a
// five minute redirect timeout.
func NewLauncher(options ...LauncherOption) *Launcher {
	l := &Launcher{
		timeout: defaultRedirectTimeout,
		openURL: openSystemBrowser,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Authorize starts the loopback callback server, sends the user agent to
// the authorization URL, and blocks until the redirect arrives, the
// context is cancelled, or the timeout elapses. The callbackScheme must
// match the scheme of the redirect URI embedded in the authorization URL.
func (l *Launcher) Authorize(ctx context.Context, authorizationURL, callbackScheme string) (string, error) {
	redirectURI, expectedState, err := redirectTarget(authorizationURL)
	if err != nil {
		return "", err
	}
	if redirectURI.Scheme != callbackScheme {
		return "", errors.Errorf("redirect uri scheme %q does not match callback scheme %q", redirectURI.Scheme, callbackScheme)
	}
	if redirectURI.Scheme != "http" {
		return "", errors.Errorf("loopback launcher requires an http redirect uri, got %q", redirectURI.Scheme)
	}

	server := newCallbackServer(redirectURI.Host, redirectURI.Path, expectedState)
	if err = server.start(); err != nil {
		return "", err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if stopErr := server.stop(stopCtx); stopErr != nil {
			log.Err(stopErr).Msg("Callback server stop error")
		}
	}()

	if err = l.openURL(authorizationURL); err != nil {
		log.Err(err).Msg("Failed to open browser automatically")
		fmt.Printf("Visit the following URL to continue authentication:\n%s\n", authorizationURL)
	}

	return server.wait(ctx, l.timeout)
}

// redirectTarget pulls the redirect_uri and optional state out of the
// authorization URL so the callback server knows where to listen and
// what state echo to expect.
func redirectTarget(authorizationURL string) (*url.URL, string, error) {
	u, err := url.Parse(authorizationURL)
	if err != nil {
		return nil, "", errors.Wrap(err, "parse authorization url")
	}
	query := u.Query()

	rawRedirect := query.Get("redirect_uri")
	if rawRedirect == "" {
		return nil, "", errors.New("authorization url carries no redirect_uri")
	}
	redirectURI, err := url.Parse(rawRedirect)
	if err != nil {
		return nil, "", errors.Wrap(err, "parse redirect_uri")
	}
	return redirectURI, query.Get("state"), nil
}

// openSystemBrowser opens a URL via open-golang, falling back to the
// platform command when that fails.
func openSystemBrowser(rawURL string) error {
	if err := open.Run(rawURL); err == nil {
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	default:
		return errors.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "start browser command")
	}
	return nil
}
