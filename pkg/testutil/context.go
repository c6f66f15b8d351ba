package testutil

import (
	"net/http"
	"time"

	"placement/pkg/requestcontext"
)

// WithPrincipal adds a verified caller to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithPrincipal(req *http.Request, email, name string) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), email, name))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
