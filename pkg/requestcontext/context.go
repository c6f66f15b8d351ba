// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values once at the request boundary; services read them
// without importing net/http.
//
// Usage in services (read values):
//
//	email := requestcontext.Email(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithPrincipal(ctx, "student@college.edu", "Student")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	emailKey       struct{}
	nameKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyEmail       = emailKey{}
	ContextKeyName        = nameKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Principal (verified identity)
// -----------------------------------------------------------------------------

// Email retrieves the verified caller email. Returns "" when unauthenticated.
func Email(ctx context.Context) string {
	if email, ok := ctx.Value(ContextKeyEmail).(string); ok {
		return email
	}
	return ""
}

// Name retrieves the caller display name from the verified token, if any.
func Name(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyName).(string); ok {
		return name
	}
	return ""
}

// WithPrincipal injects the verified caller identity.
func WithPrincipal(ctx context.Context, email, name string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyEmail, email)
	return context.WithValue(ctx, ContextKeyName, name)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
