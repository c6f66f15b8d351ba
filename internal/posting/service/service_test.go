package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/mock/gomock"

	"placement/internal/audit"
	"placement/internal/deadline"
	"placement/internal/platform/metrics"
	"placement/internal/posting/models"
	"placement/internal/posting/service/mocks"
	postingstore "placement/internal/posting/store"
	profile "placement/internal/profile/models"
	profilestore "placement/internal/profile/store"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	postings  *postingstore.InMemory
	profiles  *profilestore.InMemory
	mockCache *mocks.MockListCache
	mockAudit *mocks.MockAuditPublisher
	metrics   *metrics.Metrics
	service   *Service
	now       time.Time
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.postings = postingstore.NewInMemory()
	s.profiles = profilestore.NewInMemory()
	s.mockCache = mocks.NewMockListCache(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.postings, s.profiles,
		WithCache(s.mockCache),
		WithAuditPublisher(s.mockAudit),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(requestcontext.WithPrincipal(context.Background(), "admin@college.edu", "Admin"), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) seedJob(company string, created time.Time, dl *time.Time) *models.Job {
	job := &models.Job{
		Company:               company,
		Role:                  "SDE",
		Deadline:              dl,
		Eligibility:           []string{"2021-2025"},
		StudentsApplied:       []models.Application{},
		StudentsNotInterested: []string{},
		CreatedAt:             created,
	}
	s.Require().NoError(s.postings.CreateJob(s.ctx, job))
	return job
}

func (s *ServiceSuite) TestListJobs() {
	s.Run("cache miss loads from store, fills cache and classifies", func() {
		dl := s.now.Add(2 * 24 * time.Hour)
		s.seedJob("Older", s.now.Add(-time.Hour), nil)
		s.seedJob("Newer", s.now, &dl)

		gomock.InOrder(
			s.mockCache.EXPECT().Get(gomock.Any(), models.KindJob, gomock.Any()).Return(false, nil),
			s.mockCache.EXPECT().Set(gomock.Any(), models.KindJob, gomock.Any()).Return(nil),
		)

		views, err := s.service.ListJobs(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(views, 2)
		s.Equal("Newer", views[0].Company)
		s.Require().NotNil(views[0].DeadlineStatus)
		s.Equal(deadline.StatusUrgent, views[0].DeadlineStatus.Status)
		s.Equal("2 days left", views[0].DeadlineStatus.Text)
		s.Nil(views[1].DeadlineStatus)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("job", "miss")))
	})

	s.Run("cache hit skips the store and still classifies per request", func() {
		past := s.now.Add(-time.Hour)
		cached := []*models.Job{{ID: bson.NewObjectID(), Company: "Cached", Deadline: &past}}
		s.mockCache.EXPECT().Get(gomock.Any(), models.KindJob, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ models.Kind, dst any) (bool, error) {
				*dst.(*[]*models.Job) = cached
				return true, nil
			})

		views, err := s.service.ListJobs(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal("Cached", views[0].Company)
		s.Equal(deadline.StatusExpired, views[0].DeadlineStatus.Status)
	})

	s.Run("cache errors fall through to the store", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), models.KindJob, gomock.Any()).Return(false, errors.New("redis down"))
		s.mockCache.EXPECT().Set(gomock.Any(), models.KindJob, gomock.Any()).Return(errors.New("redis down"))

		views, err := s.service.ListJobs(s.ctx)
		s.Require().NoError(err)
		s.Len(views, 2)
	})
}

func (s *ServiceSuite) TestGetJob() {
	job := s.seedJob("Acme", s.now, nil)

	s.Run("malformed id is a bad request", func() {
		_, err := s.service.GetJob(s.ctx, "not-an-id")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.GetJob(s.ctx, bson.NewObjectID().Hex())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "Job not found")
	})

	s.Run("found", func() {
		view, err := s.service.GetJob(s.ctx, job.ID.Hex())
		s.Require().NoError(err)
		s.Equal(job.ID, view.ID)
	})

	s.Run("batch lookup skips malformed ids", func() {
		views, err := s.service.JobsByIDs(s.ctx, []string{"bad", job.ID.Hex(), bson.NewObjectID().Hex()})
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal(job.ID, views[0].ID)

		views, err = s.service.JobsByIDs(s.ctx, []string{"bad"})
		s.Require().NoError(err)
		s.NotNil(views)
		s.Empty(views)
	})
}

func (s *ServiceSuite) TestWebinarStatusUsesDate() {
	date := s.now.Add(-48 * time.Hour)
	w := &models.Webinar{Title: "Clinic", Date: &date, StudentsApplied: []string{}}
	s.Require().NoError(s.postings.CreateWebinar(s.ctx, w))

	view, err := s.service.GetWebinar(s.ctx, w.ID.Hex())
	s.Require().NoError(err)
	s.Equal(deadline.StatusCompleted, view.DeadlineStatus.Status)
}

func (s *ServiceSuite) TestCreateJob() {
	s.Run("validation failure writes nothing", func() {
		_, err := s.service.CreateJob(s.ctx, &models.JobInput{Role: "SDE"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("sanitises description, invalidates list and audits", func() {
		s.mockCache.EXPECT().Invalidate(gomock.Any(), models.KindJob).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(audit.ActionPostingCreated, e.Action)
			s.Equal("admin@college.edu", e.Actor)
			s.Equal("job", e.PostingKind)
			return nil
		})

		job, err := s.service.CreateJob(s.ctx, &models.JobInput{
			Company:     "  Acme ",
			Role:        "SDE",
			Description: `<p onclick="x()">Build things</p><script>alert(1)</script>`,
			InputFields: []models.InputField{{FieldName: "Resume", Type: "url", Required: true}},
		})
		s.Require().NoError(err)
		s.Equal("Acme", job.Company)
		s.Equal("<p>Build things</p>", job.Description)
		s.Require().NotNil(job.PostedAt)
		s.True(job.PostedAt.Equal(s.now))
		s.NotNil(job.Eligibility)

		stored, err := s.postings.FindJob(s.ctx, job.ID)
		s.Require().NoError(err)
		s.Equal("SDE", stored.Role)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.PostingsChanged.WithLabelValues("job", string(audit.ActionPostingCreated))))
	})
}

func (s *ServiceSuite) TestUpdateJobKeepsApplicants() {
	job := s.seedJob("Acme", s.now, nil)
	_, err := s.postings.AddJobApplication(s.ctx, job.ID, models.Application{Email: "a@college.edu"})
	s.Require().NoError(err)

	s.mockCache.EXPECT().Invalidate(gomock.Any(), models.KindJob).Return(nil)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	updated, err := s.service.UpdateJob(s.ctx, job.ID.Hex(), &models.JobInput{Company: "Acme", Role: "Backend"})
	s.Require().NoError(err, "audit failures do not fail the write")
	s.Equal("Backend", updated.Role)
	s.Len(updated.StudentsApplied, 1)

	_, err = s.service.UpdateJob(s.ctx, bson.NewObjectID().Hex(), &models.JobInput{Company: "Acme", Role: "SDE"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDeletePostings() {
	s.mockCache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	date := s.now.Add(24 * time.Hour)
	w, err := s.service.CreateWebinar(s.ctx, &models.WebinarInput{Title: "Clinic", Date: &date})
	s.Require().NoError(err)
	t, err := s.service.CreateTest(s.ctx, &models.TestInput{Title: "Aptitude"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteWebinar(s.ctx, w.ID.Hex()))
	s.Require().NoError(s.service.DeleteTest(s.ctx, t.ID.Hex()))

	err = s.service.DeleteTest(s.ctx, t.ID.Hex())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	err = s.service.DeleteJob(s.ctx, "zzz")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.service.CreateWebinar(s.ctx, &models.WebinarInput{Title: "No date"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestApplicantViews() {
	_, err := s.profiles.Save(s.ctx, &profile.Profile{
		CollegeEmail:  "a@college.edu",
		PersonalEmail: "a@gmail.com",
		Name:          "Asha",
		BatchStart:    2021,
		BatchEnd:      2025,
	})
	s.Require().NoError(err)

	job := s.seedJob("Acme", s.now, nil)
	s.Require().NoError(s.postings.AddJobNotInterested(s.ctx, job.ID, "ghost@college.edu"))
	s.Require().NoError(s.postings.AddJobNotInterested(s.ctx, job.ID, "a@gmail.com"))

	students, err := s.service.NotInterestedStudents(s.ctx, job.ID.Hex())
	s.Require().NoError(err)
	s.Require().Len(students, 2)
	s.Equal(models.StudentSummary{Email: "ghost@college.edu"}, students[0])
	s.Equal("a@gmail.com", students[1].Email)
	s.Equal("Asha", students[1].Name)
	s.Equal("a@college.edu", students[1].CollegeEmail)
	s.Equal(2025, students[1].BatchEnd)

	date := s.now.Add(24 * time.Hour)
	w := &models.Webinar{Title: "Clinic", Date: &date, StudentsApplied: []string{}}
	s.Require().NoError(s.postings.CreateWebinar(s.ctx, w))
	registrants, err := s.service.WebinarRegistrants(s.ctx, w.ID.Hex())
	s.Require().NoError(err)
	s.NotNil(registrants)
	s.Empty(registrants)

	_, err = s.service.WebinarRegistrants(s.ctx, bson.NewObjectID().Hex())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(strings.Contains(err.Error(), "Webinar"))
}
