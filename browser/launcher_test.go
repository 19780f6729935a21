package browser_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/authflow"
	"github.com/jrsteele09/go-auth-client/browser"
	"github.com/stretchr/testify/require"
)

// freeLoopbackAddr reserves a loopback port for the callback server
func freeLoopbackAddr(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

// authorizationURL builds an authorization URL whose redirect_uri points
// at the test callback address
func authorizationURL(t *testing.T, redirectURI, state string) string {
	t.Helper()

	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {"native-app-1"},
		"redirect_uri":          {redirectURI},
		"code_challenge":        {"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"},
		"code_challenge_method": {"S256"},
	}
	if state != "" {
		params.Set("state", state)
	}
	return "https://auth.example.com/oauth/authorize?" + params.Encode()
}

// fakeBrowser returns an openURL function that plays the user agent: it
// reads the redirect_uri out of the authorization URL and immediately
// follows it with the given query string
func fakeBrowser(t *testing.T, callbackQuery string) func(string) error {
	t.Helper()

	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		redirect := u.Query().Get("redirect_uri")

		resp, err := http.Get(redirect + "?" + callbackQuery)
		if err != nil {
			return err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Body.Close()
	}
}

// TestLauncher_CapturesRedirect tests the full loopback capture path
func TestLauncher_CapturesRedirect(t *testing.T) {
	addr := freeLoopbackAddr(t)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	launcher := browser.NewLauncher(
		browser.WithOpenURL(fakeBrowser(t, "code=abc123&state=xyz")),
	)

	redirectURL, err := launcher.Authorize(context.Background(), authorizationURL(t, redirectURI, "xyz"), "http")

	require.NoError(t, err)
	code, ok := authflow.QueryParameter(redirectURL, "code")
	require.True(t, ok)
	require.Equal(t, "abc123", code)
}

// TestLauncher_StateMismatch tests CSRF state echo validation
func TestLauncher_StateMismatch(t *testing.T) {
	addr := freeLoopbackAddr(t)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	launcher := browser.NewLauncher(
		browser.WithOpenURL(fakeBrowser(t, "code=abc123&state=forged")),
	)

	_, err := launcher.Authorize(context.Background(), authorizationURL(t, redirectURI, "xyz"), "http")

	require.Error(t, err)
	require.Contains(t, err.Error(), "state parameter mismatch")
}

// TestLauncher_AuthorizationError tests the error parameter path
func TestLauncher_AuthorizationError(t *testing.T) {
	addr := freeLoopbackAddr(t)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	launcher := browser.NewLauncher(
		browser.WithOpenURL(fakeBrowser(t, "error=access_denied&error_description=user+cancelled")),
	)

	_, err := launcher.Authorize(context.Background(), authorizationURL(t, redirectURI, ""), "http")

	require.Error(t, err)
	require.Contains(t, err.Error(), "access_denied")
}

// TestLauncher_Timeout tests that an abandoned prompt surfaces as an error
func TestLauncher_Timeout(t *testing.T) {
	addr := freeLoopbackAddr(t)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	launcher := browser.NewLauncher(
		browser.WithOpenURL(func(string) error { return nil }),
		browser.WithRedirectTimeout(50*time.Millisecond),
	)

	_, err := launcher.Authorize(context.Background(), authorizationURL(t, redirectURI, ""), "http")

	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout")
}

// TestLauncher_ContextCancelled tests caller-owned cancellation
func TestLauncher_ContextCancelled(t *testing.T) {
	addr := freeLoopbackAddr(t)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	ctx, cancel := context.WithCancel(context.Background())
	launcher := browser.NewLauncher(
		browser.WithOpenURL(func(string) error {
			cancel()
			return nil
		}),
	)

	_, err := launcher.Authorize(ctx, authorizationURL(t, redirectURI, ""), "http")

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

// TestLauncher_SchemeMismatch tests callback scheme enforcement
func TestLauncher_SchemeMismatch(t *testing.T) {
	addr := freeLoopbackAddr(t)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	launcher := browser.NewLauncher(browser.WithOpenURL(func(string) error { return nil }))

	_, err := launcher.Authorize(context.Background(), authorizationURL(t, redirectURI, ""), "app")

	require.Error(t, err)
	require.Contains(t, err.Error(), "does not match callback scheme")
}

// TestLauncher_MissingRedirectURI tests rejection of authorization URLs
// without a redirect_uri parameter
func TestLauncher_MissingRedirectURI(t *testing.T) {
	launcher := browser.NewLauncher(browser.WithOpenURL(func(string) error { return nil }))

	_, err := launcher.Authorize(context.Background(), "https://auth.example.com/oauth/authorize?response_type=code", "http")

	require.Error(t, err)
	require.Contains(t, err.Error(), "no redirect_uri")
}

// TestLauncher_BrowserOpenFailureKeepsWaiting tests that a failed browser
// launch does not abort the attempt while the callback can still arrive
func TestLauncher_BrowserOpenFailureKeepsWaiting(t *testing.T) {
	addr := freeLoopbackAddr(t)
	redirectURI := fmt.Sprintf("http://%s/callback", addr)

	openErr := fmt.Errorf("no display")
	launcher := browser.NewLauncher(
		browser.WithOpenURL(func(string) error {
			// Simulate the user pasting the URL manually after the
			// automatic launch failed.
			go func() {
				time.Sleep(20 * time.Millisecond)
				resp, err := http.Get(redirectURI + "?code=manual123")
				if err == nil {
					_ = resp.Body.Close()
				}
			}()
			return openErr
		}),
	)

	redirectURL, err := launcher.Authorize(context.Background(), authorizationURL(t, redirectURI, ""), "http")

	require.NoError(t, err)
	code, ok := authflow.QueryParameter(redirectURL, "code")
	require.True(t, ok)
	require.Equal(t, "manual123", code)
}
