package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"placement/internal/posting/models"
	"placement/pkg/platform/httputil"
)

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in models.JobInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, "invalid job payload", err)
		return
	}
	job, err := h.postings.CreateJob(r.Context(), &in)
	if err != nil {
		h.writeError(r.Context(), w, "failed to create job", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Job created successfully", "job": job})
}

func (h *Handler) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var in models.JobInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, "invalid job payload", err)
		return
	}
	job, err := h.postings.UpdateJob(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		h.writeError(r.Context(), w, "failed to update job", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Job updated successfully", "job": job})
}

func (h *Handler) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.postings.DeleteJob(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(r.Context(), w, "failed to delete job", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}

func (h *Handler) handleNotInterested(w http.ResponseWriter, r *http.Request) {
	students, err := h.postings.NotInterestedStudents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, "failed to load not-interested students", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"students": students})
}

func (h *Handler) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	var in models.TestInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, "invalid test payload", err)
		return
	}
	test, err := h.postings.CreateTest(r.Context(), &in)
	if err != nil {
		h.writeError(r.Context(), w, "failed to create test", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Test created successfully", "test": test})
}

func (h *Handler) handleUpdateTest(w http.ResponseWriter, r *http.Request) {
	var in models.TestInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, "invalid test payload", err)
		return
	}
	test, err := h.postings.UpdateTest(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		h.writeError(r.Context(), w, "failed to update test", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Test updated successfully", "test": test})
}

func (h *Handler) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	if err := h.postings.DeleteTest(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(r.Context(), w, "failed to delete test", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Test deleted successfully"})
}

func (h *Handler) handleCreateWebinar(w http.ResponseWriter, r *http.Request) {
	var in models.WebinarInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, "invalid webinar payload", err)
		return
	}
	webinar, err := h.postings.CreateWebinar(r.Context(), &in)
	if err != nil {
		h.writeError(r.Context(), w, "failed to create webinar", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Webinar created successfully", "webinar": webinar})
}

func (h *Handler) handleUpdateWebinar(w http.ResponseWriter, r *http.Request) {
	var in models.WebinarInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(r.Context(), w, "invalid webinar payload", err)
		return
	}
	webinar, err := h.postings.UpdateWebinar(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		h.writeError(r.Context(), w, "failed to update webinar", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Webinar updated successfully", "webinar": webinar})
}

func (h *Handler) handleDeleteWebinar(w http.ResponseWriter, r *http.Request) {
	if err := h.postings.DeleteWebinar(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(r.Context(), w, "failed to delete webinar", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Webinar deleted successfully"})
}

func (h *Handler) handleWebinarStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.postings.WebinarRegistrants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, "failed to load webinar registrants", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"students": students})
}
