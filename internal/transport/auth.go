package transport

import "net/http"

// Authenticator applies credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request)
}

// BearerAuth authenticates with a bearer token in the Authorization header.
type BearerAuth struct {
	Token string
}

// Apply sets the Authorization header.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
}

// NoAuth leaves requests unauthenticated.
type NoAuth struct{}

// Apply is a no-op.
func (a *NoAuth) Apply(_ *http.Request) {}
