// Package authflow drives the OAuth 2.0 Authorization Code flow with
// PKCE for public clients: build the authorization URL, hand it to a
// user-agent launcher, extract the authorization code from the redirect,
// and exchange the code for an access token. Each invocation is one
// complete, independent attempt; the authorization code is consumed at
// most once and nothing is retried internally.
package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/pkce"
	"github.com/pkg/errors"
)

// binaryBodyPlaceholder stands in for token response bodies that are not
// valid UTF-8, so diagnostics stay printable.
const binaryBodyPlaceholder = "(undecodable response body)"

// CompletionFunc receives the single terminal result of an asynchronous
// attempt: a token response or an error, never both.
type CompletionFunc func(*AccessTokenResponse, error)

// flowState tracks an attempt through its transitions.
type flowState int

const (
	stateIdle flowState = iota
	stateAwaitingRedirect
	stateExchangingToken
	stateSucceeded
	stateFailed
)

func (s flowState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitingRedirect:
		return "awaiting_redirect"
	case stateExchangingToken:
		return "exchanging_token"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// Authenticator orchestrates authentication attempts. It holds only the
// injected collaborators; per-attempt state lives in a flow value, so one
// Authenticator is safe for concurrent attempts.
type Authenticator struct {
	launcher   UserAgentLauncher
	httpClient HTTPClient
	generator  *pkce.Generator
}

// AuthenticatorOption defines a function type to modify the Authenticator instance.
type AuthenticatorOption func(*Authenticator)

// WithPKCEGenerator sets the PKCE generator (primarily for testing with a
// deterministic random source).
func WithPKCEGenerator(g *pkce.Generator) AuthenticatorOption {
	return func(a *Authenticator) {
		a.generator = g
	}
}

// NewAuthenticator initializes an Authenticator with its two external
// collaborators. Optional configuration can be provided via options.
func NewAuthenticator(launcher UserAgentLauncher, httpClient HTTPClient, options ...AuthenticatorOption) (*Authenticator, error) {
	if launcher == nil {
		return nil, errors.New("[NewAuthenticator] launcher is required")
	}
	if httpClient == nil {
		return nil, errors.New("[NewAuthenticator] http client is required")
	}

	authenticator := &Authenticator{
		launcher:   launcher,
		httpClient: httpClient,
		generator:  pkce.NewGenerator(),
	}

	for _, opt := range options {
		opt(authenticator)
	}

	return authenticator, nil
}

// Authenticate runs one complete attempt: generate a fresh verifier and
// challenge, send the user agent to the authorization endpoint, wait for
// the redirect, and exchange the returned code for an access token. The
// returned error is always a *FlowError except for parameter validation
// failures, which are reported before the flow starts.
func (a *Authenticator) Authenticate(ctx context.Context, parameters AuthorizationParameters) (*AccessTokenResponse, error) {
	if err := parameters.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Authenticate] failed parameter validation")
	}

	f := &flow{
		authenticator: a,
		id:            uuid.New().String(),
		parameters:    parameters,
		state:         stateIdle,
	}

	if err := f.requestAuthorization(ctx); err != nil {
		return nil, err
	}
	if err := f.exchangeCode(ctx); err != nil {
		return nil, err
	}
	return f.response, nil
}

// AuthenticateAsync runs Authenticate on its own goroutine and invokes
// onComplete exactly once with the terminal result. The single dispatch
// site below is what makes the exactly-once property hold on every
// branch, including early validation failures.
func (a *Authenticator) AuthenticateAsync(ctx context.Context, parameters AuthorizationParameters, onComplete CompletionFunc) {
	if onComplete == nil {
		onComplete = func(*AccessTokenResponse, error) {}
	}
	go func() {
		response, err := a.Authenticate(ctx, parameters)
		onComplete(response, err)
	}()
}

// flow is the state for one attempt. The verifier exists only for the
// lifetime of the flow and is never logged or persisted.
type flow struct {
	authenticator *Authenticator
	id            string
	parameters    AuthorizationParameters
	state         flowState

	verifier pkce.CodeVerifier
	code     string
	response *AccessTokenResponse
}

// requestAuthorization performs the idle -> awaiting_redirect transition
// and resolves it: generate the verifier/challenge pair, build the
// authorization URL, hand it to the launcher, and extract the
// authorization code from the redirect.
func (f *flow) requestAuthorization(ctx context.Context) error {
	verifier, err := f.authenticator.generator.GenerateVerifier()
	if err != nil {
		return f.fail(ErrVerifierGenerationFailed, err)
	}
	f.verifier = verifier
	f.state = stateAwaitingRedirect

	redirectURL, err := f.authenticator.launcher.Authorize(ctx, f.authorizationURL(pkce.DeriveChallenge(verifier)), f.parameters.CallbackScheme)
	if err != nil {
		return f.fail(ErrAuthRequestFailed, err)
	}
	if strings.TrimSpace(redirectURL) == "" {
		return f.fail(ErrAuthorizeResponseNoURL, nil)
	}

	code, ok := QueryParameter(redirectURL, "code")
	if !ok || code == "" {
		return f.fail(ErrAuthorizeResponseNoCode, nil)
	}

	f.code = code
	f.state = stateExchangingToken
	return nil
}

// exchangeCode performs the exchanging_token -> succeeded|failed
// transition: POST the authorization code and verifier to the token
// endpoint and decode the response. The code is submitted exactly once;
// a failed exchange ends the attempt.
func (f *flow) exchangeCode(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {f.parameters.ClientID},
		"code_verifier": {string(f.verifier)},
		"code":          {f.code},
		"redirect_uri":  {f.parameters.RedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.parameters.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return f.fail(ErrTokenRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.authenticator.httpClient.Do(req)
	if err != nil {
		return f.fail(ErrTokenRequestFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return f.fail(ErrTokenRequestFailed, err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return f.fail(ErrTokenResponseNoData, nil)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return f.failInvalidData(body, errors.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	var tokenResponse AccessTokenResponse
	if err = json.Unmarshal(body, &tokenResponse); err != nil {
		return f.failInvalidData(body, err)
	}
	if !tokenResponse.valid() {
		return f.failInvalidData(body, nil)
	}

	f.response = &tokenResponse
	f.state = stateSucceeded
	return nil
}

// authorizationURL appends the authorization request parameters to the
// configured endpoint, merging with any query the endpoint already
// carries (some providers bake parameters such as audience into the
// authorize URL). Scope and state are included only when set, so the
// minimal request against a bare endpoint carries exactly the five
// mandatory parameters.
func (f *flow) authorizationURL(challenge pkce.CodeChallenge) string {
	endpoint, err := url.Parse(f.parameters.AuthorizeURL)
	if err != nil {
		// Validate has already parsed this URL.
		return f.parameters.AuthorizeURL
	}

	params := endpoint.Query()
	params.Set("response_type", "code")
	params.Set("code_challenge", string(challenge))
	params.Set("code_challenge_method", pkce.Method)
	params.Set("client_id", f.parameters.ClientID)
	params.Set("redirect_uri", f.parameters.RedirectURI)
	if f.parameters.Scope != "" {
		params.Set("scope", f.parameters.Scope)
	}
	if f.parameters.State != "" {
		params.Set("state", f.parameters.State)
	}

	endpoint.RawQuery = params.Encode()
	return endpoint.String()
}

func (f *flow) fail(base *FlowError, cause error) error {
	flowErr := newFlowError(base, f.id, cause)
	flowErr.Stage = f.state.String()
	f.state = stateFailed
	return flowErr
}

func (f *flow) failInvalidData(body []byte, cause error) error {
	flowErr := f.fail(ErrTokenResponseInvalidData, cause).(*FlowError)
	flowErr.RawBody = bodyText(body)
	return flowErr
}

// bodyText decodes a response body for diagnostics, substituting a
// placeholder when the bytes are not valid UTF-8.
func bodyText(body []byte) string {
	if !utf8.Valid(body) {
		return binaryBodyPlaceholder
	}
	return string(body)
}

// QueryParameter extracts the named query parameter from a raw URL. A
// malformed URL or an absent parameter reports ok=false rather than an
// error, since the redirect URL comes from an external user agent.
func QueryParameter(rawURL, key string) (value string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	values := u.Query()
	if !values.Has(key) {
		return "", false
	}
	return values.Get(key), true
}
