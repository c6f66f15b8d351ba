package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/posting/models"
	"placement/internal/posting/service"
	postingstore "placement/internal/posting/store"
	profilestore "placement/internal/profile/store"
	"placement/pkg/platform/middleware/admin"
	"placement/pkg/testutil"
)

const adminEmail = "admin@college.edu"

type fixture struct {
	router http.Handler
	store  *postingstore.InMemory
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	postings := postingstore.NewInMemory()
	svc := service.New(postings, profilestore.NewInMemory(), service.WithLogger(logger))
	h := New(svc, logger)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdmin(admin.NewAllowlist([]string{adminEmail}), logger))
		h.RegisterAdmin(r)
	})
	return &fixture{router: r, store: postings, now: now}
}

func (f *fixture) do(t *testing.T, method, path, email string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithTime(testutil.NewStudentRequest(t, method, path, email, body), f.now)
	return testutil.Serve(f.router, req)
}

func TestListAndDetail(t *testing.T) {
	f := newFixture(t)
	dl := f.now.Add(5 * 24 * time.Hour)
	job := &models.Job{Company: "Acme", Role: "SDE", Deadline: &dl, CreatedAt: f.now}
	require.NoError(t, f.store.CreateJob(context.Background(), job))

	t.Run("list carries deadline status", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/jobs", "a@college.edu", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		body := testutil.DecodeBody[struct {
			Jobs []struct {
				Company        string `json:"company"`
				DeadlineStatus struct {
					Status string `json:"status"`
					Text   string `json:"text"`
				} `json:"deadlineStatus"`
			} `json:"jobs"`
		}](t, rr)
		require.Len(t, body.Jobs, 1)
		assert.Equal(t, "Acme", body.Jobs[0].Company)
		assert.Equal(t, "soon", body.Jobs[0].DeadlineStatus.Status)
	})

	t.Run("detail", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/jobs/"+job.ID.Hex(), "a@college.edu", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"job":`)
	})

	t.Run("malformed id", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/jobs/xyz", "a@college.edu", nil)
		testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/webinar/"+bson.NewObjectID().Hex(), "a@college.edu", nil)
		desc := testutil.AssertError(t, rr, http.StatusNotFound, "not_found")
		assert.Equal(t, "Webinar not found", desc)
	})

	t.Run("batch details", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/jobs", "a@college.edu", map[string]any{"jobIds": []string{job.ID.Hex(), "junk"}})
		require.Equal(t, http.StatusOK, rr.Code)
		body := testutil.DecodeBody[map[string][]map[string]any](t, rr)
		assert.Len(t, body["jobs"], 1)

		rr = f.do(t, http.MethodPost, "/jobs", "a@college.edu", map[string]any{})
		testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("empty lists are arrays", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/tests", "a@college.edu", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"tests":[]}`, rr.Body.String())
	})
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("non-admin is forbidden", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/admin/jobs", "student@college.edu", map[string]string{"company": "Acme", "role": "SDE"})
		testutil.AssertError(t, rr, http.StatusForbidden, "forbidden")
	})

	type jobResponse struct {
		Job struct {
			ID          string `json:"_id"`
			Description string `json:"description"`
		} `json:"job"`
	}
	var created jobResponse
	t.Run("create job", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/admin/jobs", adminEmail, map[string]any{
			"company":     "Acme",
			"role":        "SDE",
			"description": `<p>Hi</p><script>x</script>`,
			"eligibility": []string{"2021-2025"},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		created = testutil.DecodeBody[jobResponse](t, rr)
		assert.Equal(t, "<p>Hi</p>", created.Job.Description)
	})

	t.Run("validation error", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/admin/jobs", adminEmail, map[string]any{"company": "Acme"})
		desc := testutil.AssertError(t, rr, http.StatusBadRequest, "validation_error")
		assert.Equal(t, "role is required", desc)
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/admin/tests", adminEmail, "{")
		testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("update then delete", func(t *testing.T) {
		rr := f.do(t, http.MethodPatch, "/admin/jobs/"+created.Job.ID, adminEmail, map[string]any{"company": "Acme", "role": "Backend"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "Backend")

		rr = f.do(t, http.MethodDelete, "/admin/jobs/"+created.Job.ID, adminEmail, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = f.do(t, http.MethodDelete, "/admin/jobs/"+created.Job.ID, adminEmail, nil)
		testutil.AssertError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("webinar registrants", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/admin/webinars", adminEmail, map[string]any{"title": "Clinic", "date": f.now.Add(24 * time.Hour)})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		body := testutil.DecodeBody[struct {
			Webinar struct {
				ID string `json:"_id"`
			} `json:"webinar"`
		}](t, rr)
		id := body.Webinar.ID

		oid, err := bson.ObjectIDFromHex(id)
		require.NoError(t, err)
		_, err = f.store.AddRegistrant(context.Background(), models.KindWebinar, oid, "a@college.edu")
		require.NoError(t, err)

		rr = f.do(t, http.MethodGet, "/admin/webinars/"+id+"/students", adminEmail, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"students":[{"email":"a@college.edu"}]}`, rr.Body.String())
	})
}
