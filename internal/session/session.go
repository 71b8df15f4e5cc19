// Package session supplies the credential read by the stores and the remote
// client. The credential is an opaque bearer token; an empty token means
// logged out.
package session

import (
	"strings"
	"sync/atomic"
)

// CredentialProvider yields the current session token. Implementations must
// be safe for concurrent use.
type CredentialProvider interface {
	Token() string
}

// Static is a fixed credential, useful for tests and one-shot CLI runs.
type Static string

// Token implements CredentialProvider.
func (s Static) Token() string {
	return string(s)
}

// TokenSource is a swappable credential for login/logout flows. Stores key
// their hydration gates on the token value, so swapping it re-arms them.
type TokenSource struct {
	value atomic.Value
}

// NewTokenSource builds a TokenSource holding the given initial token.
func NewTokenSource(token string) *TokenSource {
	src := &TokenSource{}
	src.Set(token)
	return src
}

// Token implements CredentialProvider.
func (t *TokenSource) Token() string {
	if t == nil {
		return ""
	}
	if v, ok := t.value.Load().(string); ok {
		return v
	}
	return ""
}

// Set replaces the current token. An empty string logs the session out.
func (t *TokenSource) Set(token string) {
	t.value.Store(strings.TrimSpace(token))
}

// Clear drops the credential.
func (t *TokenSource) Clear() {
	t.Set("")
}
