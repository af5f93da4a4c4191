package testutil

import (
	"net/http"

	"voto/pkg/requestcontext"
)

// WithPrincipal adds an authenticated subject and role to the request context.
// This simulates what the bearer token middleware does for a valid token.
func WithPrincipal(req *http.Request, subject, role string) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), subject, role))
}

// WithBearer sets the Authorization header for a bearer token.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
