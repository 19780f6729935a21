package browser

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// completionPage is shown in the browser tab once the redirect has been
// captured.
const completionPage = `<!DOCTYPE html>
<html>
<head><title>Authentication complete</title></head>
<body>
<p>Authentication complete. You can close this window and return to the application.</p>
</body>
</html>`

// callbackResult carries the captured redirect or the reason it could
// not be captured.
type callbackResult struct {
	redirectURL string
	err         error
}

// callbackServer is a loopback HTTP server that waits for the
// authorization server to redirect the user agent back to the client.
// It delivers exactly one result per instance.
type callbackServer struct {
	server        *http.Server
	path          string
	expectedState string

	once    sync.Once
	results chan callbackResult
}

func newCallbackServer(addr, path, expectedState string) *callbackServer {
	s := &callbackServer{
		path:          path,
		expectedState: expectedState,
		results:       make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, s.handleCallback)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// start binds the listener synchronously so a busy port is reported to
// the caller rather than to a background goroutine.
func (s *callbackServer) start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "callback server listen on %s", s.server.Addr)
	}

	go func() {
		if serveErr := s.server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.deliver(callbackResult{err: errors.Wrap(serveErr, "callback server")})
		}
	}()
	return nil
}

func (s *callbackServer) stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "callback server shutdown")
	}
	return nil
}

// wait blocks until the redirect arrives, the context is cancelled, or
// the timeout elapses.
func (s *callbackServer) wait(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-s.results:
		return result.redirectURL, result.err
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "waiting for authorization redirect")
	case <-timer.C:
		return "", errors.Errorf("timeout waiting for authorization redirect after %s", timeout)
	}
}

func (s *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		http.Error(w, fmt.Sprintf("Authorization failed: %s", errParam), http.StatusBadRequest)
		s.deliver(callbackResult{err: errors.Errorf("authorization server returned error %q: %s", errParam, query.Get("error_description"))})
		return
	}

	if s.expectedState != "" && query.Get("state") != s.expectedState {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		s.deliver(callbackResult{err: errors.New("state parameter mismatch in authorization redirect")})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, completionPage); err != nil {
		log.Err(err).Msg("Failed to write completion page")
	}

	s.deliver(callbackResult{redirectURL: fmt.Sprintf("http://%s%s", r.Host, r.URL.RequestURI())})
}

// deliver publishes at most one result; late or duplicate callbacks are
// dropped.
func (s *callbackServer) deliver(result callbackResult) {
	s.once.Do(func() {
		s.results <- result
	})
}
