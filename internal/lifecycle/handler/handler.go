package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"placement/internal/eligibility"
	"placement/internal/lifecycle/models"
	posting "placement/internal/posting/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/httputil"
	"placement/pkg/requestcontext"
)

// Service defines the lifecycle operations the handler needs.
type Service interface {
	ApplyJob(ctx context.Context, jobID string, req models.JobApplication) (models.Outcome, error)
	ApplyTest(ctx context.Context, testID string, req models.Registration) (models.Outcome, error)
	RegisterWebinar(ctx context.Context, webinarID string, req models.Registration) (models.Outcome, error)
	Withdraw(ctx context.Context, kind posting.Kind, id, email string) (models.Outcome, error)
	NotInterested(ctx context.Context, jobID string, req models.NotInterestedRequest) (models.Outcome, error)
	UpdateApplicationStatus(ctx context.Context, jobID string, req models.StatusUpdate) (models.Outcome, error)
	CheckEligibility(ctx context.Context, jobID string) (eligibility.Result, error)
}

// Handler serves apply, withdraw and not-interested actions.
type Handler struct {
	lifecycle Service
	logger    *slog.Logger
}

func New(lifecycle Service, logger *slog.Logger) *Handler {
	return &Handler{lifecycle: lifecycle, logger: logger}
}

// Register mounts the student actions.
func (h *Handler) Register(r chi.Router) {
	r.Get("/jobs/{id}/eligibility", h.handleEligibility)
	r.Patch("/jobs/{id}", h.handleApplyJob)
	r.Delete("/jobs/{id}", h.handleWithdraw(posting.KindJob, "remainingApplicants"))
	r.Patch("/jobs/notInterested/{id}", h.handleNotInterested)

	r.Patch("/tests/{id}", h.handleApplyTest)
	r.Delete("/tests/{id}", h.handleWithdraw(posting.KindTest, "remainingApplicants"))

	r.Patch("/webinar/{id}", h.handleRegisterWebinar)
	r.Delete("/webinar/{id}", h.handleWithdraw(posting.KindWebinar, "remainingRegistrants"))
}

// RegisterAdmin mounts the application status transition. Callers must wrap
// r with the admin gate.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/jobs/{id}", h.handleUpdateStatus)
}

func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	res, err := h.lifecycle.CheckEligibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, "eligibility check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleApplyJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ApplyJobRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "invalid application request", err)
		return
	}
	app, err := req.ToModel()
	if err != nil {
		h.writeError(ctx, w, "invalid application request", err)
		return
	}
	out, err := h.lifecycle.ApplyJob(ctx, chi.URLParam(r, "id"), app)
	if err != nil {
		h.writeError(ctx, w, "job application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":        out.Message,
		"applicantCount": out.Count,
	})
}

func (h *Handler) handleApplyTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegistrationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "invalid test application request", err)
		return
	}
	out, err := h.lifecycle.ApplyTest(ctx, chi.URLParam(r, "id"), models.Registration{Email: req.Email})
	if err != nil {
		h.writeError(ctx, w, "test application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":         out.Message,
		"totalApplicants": out.Count,
	})
}

func (h *Handler) handleRegisterWebinar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegistrationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "invalid webinar registration request", err)
		return
	}
	out, err := h.lifecycle.RegisterWebinar(ctx, chi.URLParam(r, "id"), models.Registration{Email: req.Email})
	if err != nil {
		h.writeError(ctx, w, "webinar registration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":         out.Message,
		"registrantCount": out.Count,
	})
}

func (h *Handler) handleWithdraw(kind posting.Kind, countKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.lifecycle.Withdraw(r.Context(), kind, chi.URLParam(r, "id"), r.URL.Query().Get("email"))
		if err != nil {
			h.writeError(r.Context(), w, "withdraw failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message": out.Message,
			countKey:  out.Count,
		})
	}
}

func (h *Handler) handleNotInterested(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req NotInterestedRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "invalid not interested request", err)
		return
	}
	out, err := h.lifecycle.NotInterested(ctx, chi.URLParam(r, "id"), models.NotInterestedRequest{
		Email:         req.Email,
		NotInterested: req.NotInterested,
	})
	if err != nil {
		h.writeError(ctx, w, "not interested failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": out.Message})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req StatusUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, "invalid status update request", err)
		return
	}
	out, err := h.lifecycle.UpdateApplicationStatus(ctx, chi.URLParam(r, "id"), models.StatusUpdate{
		ApplicationEmail: req.ApplicationEmail,
		NewStatus:        posting.ApplicationStatus(req.NewStatus),
	})
	if err != nil {
		h.writeError(ctx, w, "status update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   out.Message,
		"newStatus": req.NewStatus,
	})
}

// writeError logs at warn for client errors and at error for internal ones.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	args := []any{"error", err.Error(), "caller", requestcontext.Email(ctx)}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}
