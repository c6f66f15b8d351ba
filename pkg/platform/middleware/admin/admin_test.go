package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"placement/pkg/requestcontext"
)

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequireAdmin(NewAllowlist([]string{" TPO@College.edu ", ""}), logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	serve := func(email string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/jobs", nil)
		if email != "" {
			req = req.WithContext(requestcontext.WithPrincipal(req.Context(), email, ""))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, serve("tpo@college.edu"))
	assert.Equal(t, http.StatusForbidden, serve("student@college.edu"))
	assert.Equal(t, http.StatusForbidden, serve(""))
}
