package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"placement/pkg/requestcontext"
)

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(Config{PerMinute: 60, Burst: 2, CleanupInterval: time.Hour}, logger)
	defer m.Stop()

	h := m.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	serve := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		if email != "" {
			req = req.WithContext(requestcontext.WithPrincipal(req.Context(), email, ""))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("burst then throttle per caller", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("a@college.edu").Code)
		assert.Equal(t, http.StatusOK, serve("a@college.edu").Code)
		rr := serve("a@college.edu")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "1", rr.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusOK, serve("b@college.edu").Code)
	})

	t.Run("anonymous requests pass", func(t *testing.T) {
		for range 5 {
			assert.Equal(t, http.StatusOK, serve("").Code)
		}
	})

	t.Run("sweep drops idle callers", func(t *testing.T) {
		assert.Equal(t, 2, m.Tracked())
		m.sweep(time.Now().Add(3 * time.Hour))
		assert.Equal(t, 0, m.Tracked())
	})
}

func TestRateLimitDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(Config{PerMinute: 1, Burst: 1}, logger, WithDisabled(true))
	h := m.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), "a@college.edu", ""))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
