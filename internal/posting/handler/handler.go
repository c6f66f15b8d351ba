package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"placement/internal/posting/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/httputil"
	"placement/pkg/requestcontext"
)

// Service defines the posting operations the handler needs.
type Service interface {
	ListJobs(ctx context.Context) ([]models.JobView, error)
	GetJob(ctx context.Context, id string) (models.JobView, error)
	JobsByIDs(ctx context.Context, ids []string) ([]models.JobView, error)
	ListTests(ctx context.Context) ([]models.TestView, error)
	GetTest(ctx context.Context, id string) (models.TestView, error)
	ListWebinars(ctx context.Context) ([]models.WebinarView, error)
	GetWebinar(ctx context.Context, id string) (models.WebinarView, error)

	CreateJob(ctx context.Context, in *models.JobInput) (*models.Job, error)
	UpdateJob(ctx context.Context, id string, in *models.JobInput) (*models.Job, error)
	DeleteJob(ctx context.Context, id string) error
	CreateTest(ctx context.Context, in *models.TestInput) (*models.Test, error)
	UpdateTest(ctx context.Context, id string, in *models.TestInput) (*models.Test, error)
	DeleteTest(ctx context.Context, id string) error
	CreateWebinar(ctx context.Context, in *models.WebinarInput) (*models.Webinar, error)
	UpdateWebinar(ctx context.Context, id string, in *models.WebinarInput) (*models.Webinar, error)
	DeleteWebinar(ctx context.Context, id string) error
	NotInterestedStudents(ctx context.Context, jobID string) ([]models.StudentSummary, error)
	WebinarRegistrants(ctx context.Context, webinarID string) ([]models.StudentSummary, error)
}

// Handler serves posting reads and admin posting management.
type Handler struct {
	postings Service
	logger   *slog.Logger
}

func New(postings Service, logger *slog.Logger) *Handler {
	return &Handler{postings: postings, logger: logger}
}

// Register mounts the student-facing read routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/jobs", h.handleListJobs)
	r.Post("/jobs", h.handleJobsByIDs)
	r.Get("/jobs/{id}", h.handleGetJob)
	r.Get("/tests", h.handleListTests)
	r.Get("/tests/{id}", h.handleGetTest)
	r.Get("/webinars", h.handleListWebinars)
	r.Get("/webinar/{id}", h.handleGetWebinar)
}

// RegisterAdmin mounts posting management. Callers must wrap r with the
// admin gate.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/jobs", h.handleCreateJob)
	r.Patch("/admin/jobs/{id}", h.handleUpdateJob)
	r.Delete("/admin/jobs/{id}", h.handleDeleteJob)
	r.Get("/admin/jobs/{id}/not-interested", h.handleNotInterested)

	r.Post("/admin/tests", h.handleCreateTest)
	r.Patch("/admin/tests/{id}", h.handleUpdateTest)
	r.Delete("/admin/tests/{id}", h.handleDeleteTest)

	r.Post("/admin/webinars", h.handleCreateWebinar)
	r.Patch("/admin/webinars/{id}", h.handleUpdateWebinar)
	r.Delete("/admin/webinars/{id}", h.handleDeleteWebinar)
	r.Get("/admin/webinars/{id}/students", h.handleWebinarStudents)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.postings.ListJobs(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "failed to list jobs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h *Handler) handleJobsByIDs(w http.ResponseWriter, r *http.Request) {
	var req JobIDsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(r.Context(), w, "invalid job ids request", err)
		return
	}
	if len(req.JobIDs) == 0 {
		h.writeError(r.Context(), w, "invalid job ids request", dErrors.New(dErrors.CodeBadRequest, "jobIds must be a non-empty array"))
		return
	}
	jobs, err := h.postings.JobsByIDs(r.Context(), req.JobIDs)
	if err != nil {
		h.writeError(r.Context(), w, "failed to load jobs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.postings.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, "failed to load job", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (h *Handler) handleListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.postings.ListTests(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "failed to list tests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tests": tests})
}

func (h *Handler) handleGetTest(w http.ResponseWriter, r *http.Request) {
	test, err := h.postings.GetTest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, "failed to load test", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"test": test})
}

func (h *Handler) handleListWebinars(w http.ResponseWriter, r *http.Request) {
	webinars, err := h.postings.ListWebinars(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "failed to list webinars", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"webinars": webinars})
}

func (h *Handler) handleGetWebinar(w http.ResponseWriter, r *http.Request) {
	webinar, err := h.postings.GetWebinar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, "failed to load webinar", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"webinar": webinar})
}

// writeError logs at warn for client errors and at error for internal ones.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	args := []any{"error", err.Error()}
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
