// Package pkce implements the Proof Key for Code Exchange extension to
// OAuth 2.0 (RFC 7636) used by public clients that cannot hold a client
// secret. It produces the random code verifier, derives the S256 code
// challenge from it, and generates the random state value used for CSRF
// protection during the authorization redirect.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

const (
	// verifierByteLength is the entropy drawn for a code verifier.
	// 32 bytes encode to 43 base64url characters, the RFC 7636 minimum.
	verifierByteLength = 32

	// stateByteLength is the entropy drawn for a state parameter.
	stateByteLength = 16

	// MinVerifierLength and MaxVerifierLength are the RFC 7636 bounds
	// on an encoded code verifier.
	MinVerifierLength = 43
	MaxVerifierLength = 128
)

// Method is the only code challenge method this package produces.
// The "plain" method is deliberately not supported.
const Method = "S256"

// CodeVerifier is a high-entropy random string, base64url encoded
// without padding. It is sent only in the token exchange request and
// must never be logged or persisted.
type CodeVerifier string

// CodeChallenge is the base64url encoded SHA-256 digest of a verifier.
// It is safe to expose in the authorization request URL.
type CodeChallenge string

// Generator draws PKCE material from a random source.
type Generator struct {
	random io.Reader
}

// GeneratorOption defines a function type to modify a Generator.
type GeneratorOption func(*Generator)

// WithRandom sets the random source (primarily for testing).
func WithRandom(r io.Reader) GeneratorOption {
	return func(g *Generator) {
		g.random = r
	}
}

// NewGenerator creates a Generator backed by crypto/rand unless
// overridden via options.
func NewGenerator(options ...GeneratorOption) *Generator {
	g := &Generator{random: rand.Reader}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// GenerateVerifier draws verifierByteLength bytes from the random source
// and encodes them as an unpadded base64url string. A failure of the
// random source is returned to the caller; a flow cannot proceed without
// entropy.
func (g *Generator) GenerateVerifier() (CodeVerifier, error) {
	b := make([]byte, verifierByteLength)
	if _, err := io.ReadFull(g.random, b); err != nil {
		return "", errors.Wrap(err, "GenerateVerifier rand.Read")
	}
	return CodeVerifier(base64.RawURLEncoding.EncodeToString(b)), nil
}

// GenerateState returns a random base64url string suitable for the OAuth2
// state parameter.
func (g *Generator) GenerateState() (string, error) {
	b := make([]byte, stateByteLength)
	if _, err := io.ReadFull(g.random, b); err != nil {
		return "", errors.Wrap(err, "GenerateState rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeriveChallenge computes the S256 code challenge for a verifier:
// BASE64URL(SHA256(verifier)). It is a pure function, the same verifier
// always yields the same challenge.
func DeriveChallenge(verifier CodeVerifier) CodeChallenge {
	hash := sha256.Sum256([]byte(verifier))
	return CodeChallenge(base64.RawURLEncoding.EncodeToString(hash[:]))
}

// GenerateVerifier draws a verifier from crypto/rand.
func GenerateVerifier() (CodeVerifier, error) {
	return NewGenerator().GenerateVerifier()
}

// GenerateState draws a state value from crypto/rand.
func GenerateState() (string, error) {
	return NewGenerator().GenerateState()
}
