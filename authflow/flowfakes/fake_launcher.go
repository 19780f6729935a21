package flowfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/authflow"
)

var _ authflow.UserAgentLauncher = (*FakeLauncher)(nil)

// FakeLauncher is a scripted user-agent launcher for tests. It records
// every authorization URL and callback scheme it receives and returns the
// configured redirect URL or error.
type FakeLauncher struct {
	RedirectURL string
	Err         error

	lock            sync.Mutex
	authorizeCalls  int
	receivedURLs    []string
	receivedSchemes []string
}

func NewFakeLauncher(redirectURL string, err error) *FakeLauncher {
	return &FakeLauncher{
		RedirectURL: redirectURL,
		Err:         err,
	}
}

func (l *FakeLauncher) Authorize(_ context.Context, authorizationURL, callbackScheme string) (string, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.authorizeCalls++
	l.receivedURLs = append(l.receivedURLs, authorizationURL)
	l.receivedSchemes = append(l.receivedSchemes, callbackScheme)
	if l.Err != nil {
		return "", l.Err
	}
	return l.RedirectURL, nil
}

func (l *FakeLauncher) AuthorizeCalls() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.authorizeCalls
}

func (l *FakeLauncher) LastAuthorizationURL() string {
	l.lock.Lock()
	defer l.lock.Unlock()
	if len(l.receivedURLs) == 0 {
		return ""
	}
	return l.receivedURLs[len(l.receivedURLs)-1]
}

func (l *FakeLauncher) LastCallbackScheme() string {
	l.lock.Lock()
	defer l.lock.Unlock()
	if len(l.receivedSchemes) == 0 {
		return ""
	}
	return l.receivedSchemes[len(l.receivedSchemes)-1]
}
