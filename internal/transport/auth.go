package transport

import "net/http"

// Authenticator applies a credential to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth leaves requests untouched.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth sets "Authorization: Bearer <token>".
type BearerAuth struct{}

// Apply implements Authenticator.
func (BearerAuth) Apply(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HeaderAuth puts the raw token in a custom header.
type HeaderAuth struct {
	Header string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(req *http.Request, token string) {
	req.Header.Set(a.Header, token)
}
