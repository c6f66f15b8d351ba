// Package httptransport assembles the chi router: the shared middleware chain,
// the public probes and the authenticated student and admin route groups.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"placement/pkg/platform/httputil"
	"placement/pkg/platform/middleware/admin"
	"placement/pkg/platform/middleware/auth"
	request "placement/pkg/platform/middleware/request"
	"placement/pkg/platform/middleware/requesttime"
)

// Routes is implemented by every feature handler.
type Routes interface {
	Register(r chi.Router)
}

// AdminRoutes is implemented by handlers with admin-only endpoints.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Config carries everything the router needs.
type Config struct {
	Logger         *slog.Logger
	Verifier       auth.TokenVerifier
	Admins         admin.Allowlist
	AllowedOrigins []string
	RequestTimeout time.Duration
	Metrics        request.LatencyObserver
	Gatherer       prometheus.Gatherer
	RateLimit      func(http.Handler) http.Handler
	HealthChecks   map[string]HealthCheck
	Handlers       []Routes
}

func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Latency(cfg.Metrics))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", request.HeaderRequestID},
		ExposedHeaders:   []string{request.HeaderRequestID},
		AllowCredentials: true,
	}).Handler)
	r.Use(requesttime.Middleware)
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}
	r.Use(request.ContentTypeJSON)

	r.Get("/healthz", healthHandler(cfg.HealthChecks))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Verifier, cfg.Logger))
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}
		for _, h := range cfg.Handlers {
			h.Register(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdmin(cfg.Admins, cfg.Logger))
			for _, h := range cfg.Handlers {
				if a, ok := h.(AdminRoutes); ok {
					a.RegisterAdmin(r)
				}
			}
		})
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failed := map[string]string{}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failed": failed})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
