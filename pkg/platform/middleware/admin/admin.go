package admin

import (
	"log/slog"
	"net/http"

	request "placement/pkg/platform/middleware/request"
	pstrings "placement/pkg/platform/strings"
	"placement/pkg/requestcontext"
)

// Allowlist holds the lower-cased emails of portal administrators.
type Allowlist map[string]struct{}

// NewAllowlist builds an allowlist from raw emails, ignoring blanks.
func NewAllowlist(emails []string) Allowlist {
	normalized := pstrings.NormalizeEmails(emails)
	a := make(Allowlist, len(normalized))
	for _, e := range normalized {
		a[e] = struct{}{}
	}
	return a
}

// Contains reports whether email belongs to an administrator.
func (a Allowlist) Contains(email string) bool {
	_, ok := a[pstrings.NormalizeEmail(email)]
	return ok
}

// RequireAdmin rejects callers whose verified email is not on the allowlist.
// Must run after auth.RequireAuth.
func RequireAdmin(admins Allowlist, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			email := requestcontext.Email(ctx)
			if email == "" || !admins.Contains(email) {
				logger.WarnContext(ctx, "admin access denied",
					"email", email,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin access required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
