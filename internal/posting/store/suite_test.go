package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/posting/models"
	"placement/pkg/platform/sentinel"
)

type postingStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	FindJob(ctx context.Context, id bson.ObjectID) (*models.Job, error)
	ListJobs(ctx context.Context) ([]*models.Job, error)
	FindJobsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Job, error)
	UpdateJobContent(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id bson.ObjectID) error
	AddJobApplication(ctx context.Context, id bson.ObjectID, app models.Application) (int, error)
	RemoveJobApplication(ctx context.Context, id bson.ObjectID, email string) (int, error)
	AddJobNotInterested(ctx context.Context, id bson.ObjectID, email string) error
	SetJobApplicationStatus(ctx context.Context, id bson.ObjectID, email string, status models.ApplicationStatus, at time.Time) error

	CreateTest(ctx context.Context, t *models.Test) error
	FindTest(ctx context.Context, id bson.ObjectID) (*models.Test, error)
	UpdateTestContent(ctx context.Context, t *models.Test) error
	CreateWebinar(ctx context.Context, w *models.Webinar) error
	FindWebinar(ctx context.Context, id bson.ObjectID) (*models.Webinar, error)
	ListWebinars(ctx context.Context) ([]*models.Webinar, error)
	DeleteWebinar(ctx context.Context, id bson.ObjectID) error

	AddRegistrant(ctx context.Context, kind models.Kind, id bson.ObjectID, email string) (int, error)
	RemoveRegistrant(ctx context.Context, kind models.Kind, id bson.ObjectID, email string) (int, error)
}

// PostingStoreSuite runs the same behaviour checks against every implementation.
type PostingStoreSuite struct {
	suite.Suite
	newStore func() postingStore
	store    postingStore
	ctx      context.Context
	now      time.Time
}

func (s *PostingStoreSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *PostingStoreSuite) newJob(company string, createdAt time.Time) *models.Job {
	return &models.Job{
		Company:               company,
		Role:                  "SDE Intern",
		Eligibility:           []string{"2021-2025"},
		ExtraFields:           []models.ExtraField{},
		InputFields:           []models.InputField{},
		StudentsApplied:       []models.Application{},
		StudentsNotInterested: []string{},
		CreatedAt:             createdAt,
		UpdatedAt:             createdAt,
	}
}

func (s *PostingStoreSuite) seedJob() *models.Job {
	job := s.newJob("Acme", s.now)
	s.Require().NoError(s.store.CreateJob(s.ctx, job))
	return job
}

func (s *PostingStoreSuite) application(email string) models.Application {
	return models.Application{
		Email:         email,
		Responses:     []models.Response{{FieldName: "Resume", Value: "https://cdn.example/r.pdf"}},
		AppliedAt:     s.now,
		ApplicantName: "Student",
		Status:        models.StatusPending,
	}
}

func (s *PostingStoreSuite) TestJobLookups() {
	s.Run("creates and finds job by ID", func() {
		job := s.seedJob()
		s.False(job.ID.IsZero())

		found, err := s.store.FindJob(s.ctx, job.ID)
		s.Require().NoError(err)
		s.Equal("Acme", found.Company)
		s.Equal([]string{"2021-2025"}, found.Eligibility)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindJob(s.ctx, bson.NewObjectID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("lists newest first", func() {
		older := s.newJob("Older", s.now.Add(-time.Hour))
		newer := s.newJob("Newer", s.now.Add(time.Hour))
		s.Require().NoError(s.store.CreateJob(s.ctx, older))
		s.Require().NoError(s.store.CreateJob(s.ctx, newer))

		jobs, err := s.store.ListJobs(s.ctx)
		s.Require().NoError(err)
		s.Require().GreaterOrEqual(len(jobs), 2)
		s.Equal("Newer", jobs[0].Company)
		s.Equal("Older", jobs[len(jobs)-1].Company)
	})

	s.Run("batch lookup skips unknown ids", func() {
		job := s.seedJob()
		jobs, err := s.store.FindJobsByIDs(s.ctx, []bson.ObjectID{job.ID, bson.NewObjectID(), job.ID})
		s.Require().NoError(err)
		s.Require().Len(jobs, 1)
		s.Equal(job.ID, jobs[0].ID)
	})
}

func (s *PostingStoreSuite) TestJobContentUpdateKeepsApplicants() {
	job := s.seedJob()
	_, err := s.store.AddJobApplication(s.ctx, job.ID, s.application("a@college.edu"))
	s.Require().NoError(err)

	job.Role = "Backend Engineer"
	job.StudentsApplied = nil
	s.Require().NoError(s.store.UpdateJobContent(s.ctx, job))

	found, err := s.store.FindJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal("Backend Engineer", found.Role)
	s.Len(found.StudentsApplied, 1)

	missing := s.newJob("Ghost", s.now)
	missing.ID = bson.NewObjectID()
	s.Require().ErrorIs(s.store.UpdateJobContent(s.ctx, missing), sentinel.ErrNotFound)
}

func (s *PostingStoreSuite) TestJobApplications() {
	s.Run("append returns new count", func() {
		job := s.seedJob()
		n, err := s.store.AddJobApplication(s.ctx, job.ID, s.application("a@college.edu"))
		s.Require().NoError(err)
		s.Equal(1, n)

		n, err = s.store.AddJobApplication(s.ctx, job.ID, s.application("b@college.edu"))
		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Run("duplicate email conflicts and count is unchanged", func() {
		job := s.seedJob()
		_, err := s.store.AddJobApplication(s.ctx, job.ID, s.application("a@college.edu"))
		s.Require().NoError(err)

		_, err = s.store.AddJobApplication(s.ctx, job.ID, s.application("a@college.edu"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)

		found, err := s.store.FindJob(s.ctx, job.ID)
		s.Require().NoError(err)
		s.Len(found.StudentsApplied, 1)
	})

	s.Run("unknown job is not found", func() {
		_, err := s.store.AddJobApplication(s.ctx, bson.NewObjectID(), s.application("a@college.edu"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("withdraw returns remaining and rejects a second withdraw", func() {
		job := s.seedJob()
		_, err := s.store.AddJobApplication(s.ctx, job.ID, s.application("a@college.edu"))
		s.Require().NoError(err)
		_, err = s.store.AddJobApplication(s.ctx, job.ID, s.application("b@college.edu"))
		s.Require().NoError(err)

		n, err := s.store.RemoveJobApplication(s.ctx, job.ID, "a@college.edu")
		s.Require().NoError(err)
		s.Equal(1, n)

		_, err = s.store.RemoveJobApplication(s.ctx, job.ID, "a@college.edu")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("status update", func() {
		job := s.seedJob()
		_, err := s.store.AddJobApplication(s.ctx, job.ID, s.application("a@college.edu"))
		s.Require().NoError(err)

		s.Require().NoError(s.store.SetJobApplicationStatus(s.ctx, job.ID, "a@college.edu", models.StatusAccepted, s.now))
		found, err := s.store.FindJob(s.ctx, job.ID)
		s.Require().NoError(err)
		app, ok := found.Application("a@college.edu")
		s.Require().True(ok)
		s.Equal(models.StatusAccepted, app.Status)

		err = s.store.SetJobApplicationStatus(s.ctx, job.ID, "nobody@college.edu", models.StatusAccepted, s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostingStoreSuite) TestConcurrentDuplicateApply() {
	job := s.seedJob()

	var wg sync.WaitGroup
	var succeeded, conflicted atomic.Int32
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.AddJobApplication(s.ctx, job.ID, s.application("racer@college.edu"))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), succeeded.Load())
	s.Equal(int32(9), conflicted.Load())
	found, err := s.store.FindJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Len(found.StudentsApplied, 1)
}

func (s *PostingStoreSuite) TestNotInterested() {
	job := s.seedJob()
	s.Require().NoError(s.store.AddJobNotInterested(s.ctx, job.ID, "a@college.edu"))
	s.Require().ErrorIs(s.store.AddJobNotInterested(s.ctx, job.ID, "a@college.edu"), sentinel.ErrConflict)
	s.Require().ErrorIs(s.store.AddJobNotInterested(s.ctx, bson.NewObjectID(), "a@college.edu"), sentinel.ErrNotFound)

	found, err := s.store.FindJob(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal([]string{"a@college.edu"}, found.StudentsNotInterested)
}

func (s *PostingStoreSuite) TestRegistrants() {
	webinarDate := s.now.Add(48 * time.Hour)
	webinar := &models.Webinar{Title: "Resume clinic", Date: &webinarDate, StudentsApplied: []string{}, CreatedAt: s.now, UpdatedAt: s.now}
	s.Require().NoError(s.store.CreateWebinar(s.ctx, webinar))
	test := &models.Test{Title: "Aptitude", ExtraFields: []models.ExtraField{}, StudentsApplied: []string{}, CreatedAt: s.now, UpdatedAt: s.now}
	s.Require().NoError(s.store.CreateTest(s.ctx, test))

	s.Run("register and deduplicate", func() {
		n, err := s.store.AddRegistrant(s.ctx, models.KindWebinar, webinar.ID, "a@college.edu")
		s.Require().NoError(err)
		s.Equal(1, n)

		_, err = s.store.AddRegistrant(s.ctx, models.KindWebinar, webinar.ID, "a@college.edu")
		s.Require().ErrorIs(err, sentinel.ErrConflict)

		n, err = s.store.AddRegistrant(s.ctx, models.KindTest, test.ID, "a@college.edu")
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("kinds are separate collections", func() {
		_, err := s.store.AddRegistrant(s.ctx, models.KindTest, webinar.ID, "b@college.edu")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("withdraw", func() {
		n, err := s.store.RemoveRegistrant(s.ctx, models.KindWebinar, webinar.ID, "a@college.edu")
		s.Require().NoError(err)
		s.Equal(0, n)

		_, err = s.store.RemoveRegistrant(s.ctx, models.KindWebinar, webinar.ID, "a@college.edu")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("content update keeps registrants", func() {
		test.Title = "Aptitude II"
		test.StudentsApplied = nil
		s.Require().NoError(s.store.UpdateTestContent(s.ctx, test))
		found, err := s.store.FindTest(s.ctx, test.ID)
		s.Require().NoError(err)
		s.Equal("Aptitude II", found.Title)
		s.Equal([]string{"a@college.edu"}, found.StudentsApplied)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.store.DeleteWebinar(s.ctx, webinar.ID))
		_, err := s.store.FindWebinar(s.ctx, webinar.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		s.Require().ErrorIs(s.store.DeleteWebinar(s.ctx, webinar.ID), sentinel.ErrNotFound)
	})
}
