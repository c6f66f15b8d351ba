package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"placement/internal/profile/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/httputil"
	"placement/pkg/requestcontext"
)

type Service interface {
	Get(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, in *models.ProfileInput) (*models.Profile, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// Handler serves the caller's own profile.
type Handler struct {
	profiles Service
	logger   *slog.Logger
}

func New(profiles Service, logger *slog.Logger) *Handler {
	return &Handler{profiles: profiles, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/users/me", h.handleGet)
	r.Put("/users/me", h.handleSave)
	r.Get("/users/me/dashboard", h.handleDashboard)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "failed to load profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": p})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, "invalid profile payload", err)
		return
	}
	p, err := h.profiles.Save(r.Context(), &in)
	if err != nil {
		h.writeError(r.Context(), w, "failed to save profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Profile saved successfully", "user": p})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.profiles.Dashboard(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "failed to load dashboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
