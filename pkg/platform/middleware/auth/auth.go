package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "placement/pkg/platform/middleware/request"
	"placement/pkg/requestcontext"
)

// Principal is the verified identity resolved from a bearer token.
type Principal struct {
	Email string
	Name  string
}

// TokenVerifier resolves a bearer token into a principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// GetEmail retrieves the authenticated caller email from the context.
func GetEmail(ctx context.Context) string {
	return requestcontext.Email(ctx)
}

// GetName retrieves the authenticated caller display name from the context.
func GetName(ctx context.Context) string {
	return requestcontext.Name(ctx)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth verifies the bearer token once per request and stores the
// principal in the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			principal, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, principal.Email, principal.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
