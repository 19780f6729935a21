package authflow

import (
	"errors"
	"fmt"
)

// FlowErrorKind tags each failure category of the authorization flow.
// Every kind is terminal for the current attempt; the library never
// retries internally.
type FlowErrorKind string

const (
	// VerifierGenerationFailed means the secure random source failed while
	// drawing the code verifier. The attempt never reached the user agent.
	VerifierGenerationFailed FlowErrorKind = "verifier_generation_failed"

	// AuthRequestFailed means the user-agent launcher reported an error,
	// including the user dismissing the authorization prompt.
	AuthRequestFailed FlowErrorKind = "auth_request_failed"

	// AuthorizeResponseNoURL means the launcher completed without a
	// redirect URL.
	AuthorizeResponseNoURL FlowErrorKind = "authorize_response_no_url"

	// AuthorizeResponseNoCode means the redirect URL carried no "code"
	// query parameter.
	AuthorizeResponseNoCode FlowErrorKind = "authorize_response_no_code"

	// TokenRequestFailed means the HTTP transport failed during the
	// token exchange.
	TokenRequestFailed FlowErrorKind = "token_request_failed"

	// TokenResponseNoData means the token endpoint returned an empty body.
	TokenResponseNoData FlowErrorKind = "token_response_no_data"

	// TokenResponseInvalidData means the token endpoint body was not the
	// expected {access_token, expires_in} JSON shape. RawBody preserves
	// the response text for diagnostics.
	TokenResponseInvalidData FlowErrorKind = "token_response_invalid_data"
)

// FlowError is the terminal artifact of a failed authentication attempt.
// It carries the failure kind, the underlying cause when one exists, and
// the raw token response body when decoding failed.
type FlowError struct {
	// Kind is the failure category.
	Kind FlowErrorKind
	// Message is a human-readable description of the failure.
	Message string
	// AttemptID correlates the error with one flow invocation.
	AttemptID string
	// Stage is the flow state at the moment of failure, e.g.
	// "awaiting_redirect" or "exchanging_token".
	Stage string
	// Cause is the underlying launcher or transport error, if any.
	Cause error
	// RawBody is the token response text, set for TokenResponseInvalidData.
	RawBody string
}

// Error returns a string representation of the flow error.
func (e *FlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *FlowError) Unwrap() error {
	return e.Cause
}

// Is matches flow errors by kind, so callers can compare against the
// package sentinels with errors.Is regardless of cause or body payload.
func (e *FlowError) Is(target error) bool {
	t, ok := target.(*FlowError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel values for errors.Is comparisons.
var (
	ErrVerifierGenerationFailed = &FlowError{Kind: VerifierGenerationFailed, Message: "failed to generate code verifier"}
	ErrAuthRequestFailed        = &FlowError{Kind: AuthRequestFailed, Message: "user agent could not complete the authorization request"}
	ErrAuthorizeResponseNoURL   = &FlowError{Kind: AuthorizeResponseNoURL, Message: "user agent returned no redirect url"}
	ErrAuthorizeResponseNoCode  = &FlowError{Kind: AuthorizeResponseNoCode, Message: "redirect url carries no authorization code"}
	ErrTokenRequestFailed       = &FlowError{Kind: TokenRequestFailed, Message: "token exchange request failed"}
	ErrTokenResponseNoData      = &FlowError{Kind: TokenResponseNoData, Message: "token endpoint returned an empty body"}
	ErrTokenResponseInvalidData = &FlowError{Kind: TokenResponseInvalidData, Message: "token endpoint returned an unexpected body"}
)

// newFlowError copies a sentinel and attaches per-attempt context.
func newFlowError(base *FlowError, attemptID string, cause error) *FlowError {
	return &FlowError{
		Kind:      base.Kind,
		Message:   base.Message,
		AttemptID: attemptID,
		Cause:     cause,
	}
}

// AsFlowError extracts a *FlowError from an error chain.
func AsFlowError(err error) (*FlowError, bool) {
	var flowErr *FlowError
	ok := errors.As(err, &flowErr)
	return flowErr, ok
}
