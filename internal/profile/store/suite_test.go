package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/profile/models"
	posting "placement/internal/posting/models"
	"placement/pkg/platform/sentinel"
)

type profileStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindByEmails(ctx context.Context, emails []string) ([]*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) (*models.Profile, error)
	AddMembership(ctx context.Context, email string, kind posting.Kind, m models.Membership) error
	RemoveMembership(ctx context.Context, email string, kind posting.Kind, id bson.ObjectID) error
}

type ProfileStoreSuite struct {
	suite.Suite
	newStore func() profileStore
	store    profileStore
	ctx      context.Context
	now      time.Time
}

func (s *ProfileStoreSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *ProfileStoreSuite) seed(email string) *models.Profile {
	saved, err := s.store.Save(s.ctx, &models.Profile{
		CollegeEmail:  email,
		Name:          "Asha",
		PersonalEmail: "personal+" + email,
		BatchStart:    2021,
		BatchEnd:      2025,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	})
	s.Require().NoError(err)
	return saved
}

func (s *ProfileStoreSuite) TestSave() {
	s.Run("insert starts with empty lists", func() {
		p := s.seed("a@college.edu")
		s.False(p.ID.IsZero())
		s.Empty(p.Jobs)
		s.Empty(p.Tests)
		s.Empty(p.Webinars)
	})

	s.Run("update keeps memberships and creation time", func() {
		p := s.seed("b@college.edu")
		jobID := bson.NewObjectID()
		s.Require().NoError(s.store.AddMembership(s.ctx, p.CollegeEmail, posting.KindJob, models.NewMembership(posting.KindJob, jobID, s.now)))

		later := s.now.Add(time.Hour)
		updated, err := s.store.Save(s.ctx, &models.Profile{
			CollegeEmail: p.CollegeEmail,
			Name:         "Asha K",
			BatchStart:   2022,
			BatchEnd:     2026,
			CreatedAt:    later,
			UpdatedAt:    later,
		})
		s.Require().NoError(err)
		s.Equal(p.ID, updated.ID)
		s.Equal("Asha K", updated.Name)
		s.Equal(2022, updated.BatchStart)
		s.True(updated.CreatedAt.Equal(s.now))
		s.True(updated.UpdatedAt.Equal(later))
		s.Equal([]bson.ObjectID{jobID}, updated.PostingIDs(posting.KindJob))
	})
}

func (s *ProfileStoreSuite) TestFind() {
	s.seed("a@college.edu")
	s.seed("b@college.edu")

	_, err := s.store.FindByEmail(s.ctx, "missing@college.edu")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	found, err := s.store.FindByEmails(s.ctx, []string{"a@college.edu", "personal+b@college.edu", "x@college.edu"})
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("a@college.edu", found[0].CollegeEmail)
	s.Equal("b@college.edu", found[1].CollegeEmail)
}

func (s *ProfileStoreSuite) TestMemberships() {
	p := s.seed("a@college.edu")
	testID := bson.NewObjectID()
	m := models.NewMembership(posting.KindTest, testID, s.now)

	s.Require().NoError(s.store.AddMembership(s.ctx, p.CollegeEmail, posting.KindTest, m))
	s.Require().ErrorIs(s.store.AddMembership(s.ctx, p.CollegeEmail, posting.KindTest, m), sentinel.ErrConflict)
	s.Require().ErrorIs(s.store.AddMembership(s.ctx, "ghost@college.edu", posting.KindTest, m), sentinel.ErrNotFound)

	// Same id in another list is independent.
	s.Require().NoError(s.store.AddMembership(s.ctx, p.CollegeEmail, posting.KindWebinar, models.NewMembership(posting.KindWebinar, testID, s.now)))

	found, err := s.store.FindByEmail(s.ctx, p.CollegeEmail)
	s.Require().NoError(err)
	s.Len(found.Tests, 1)
	s.Len(found.Webinars, 1)

	s.Require().NoError(s.store.RemoveMembership(s.ctx, p.CollegeEmail, posting.KindTest, testID))
	s.Require().ErrorIs(s.store.RemoveMembership(s.ctx, p.CollegeEmail, posting.KindTest, testID), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.RemoveMembership(s.ctx, "ghost@college.edu", posting.KindTest, testID), sentinel.ErrNotFound)

	found, err = s.store.FindByEmail(s.ctx, p.CollegeEmail)
	s.Require().NoError(err)
	s.Empty(found.Tests)
	s.Len(found.Webinars, 1)
}

func (s *ProfileStoreSuite) TestConcurrentMembership() {
	p := s.seed("racer@college.edu")
	m := models.NewMembership(posting.KindJob, bson.NewObjectID(), s.now)

	var wg sync.WaitGroup
	var succeeded, conflicted atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.AddMembership(s.ctx, p.CollegeEmail, posting.KindJob, m)
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
	s.Equal(int32(7), conflicted.Load())
}
