package service

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	posting "placement/internal/posting/models"
	"placement/internal/profile/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/requestcontext"
)

// Dashboard loads the caller's jobs, tests and webinars concurrently.
// Memberships whose posting was deleted are skipped.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	out := &models.Dashboard{
		Jobs:     []models.AppliedJob{},
		Tests:    []models.AppliedTest{},
		Webinars: []models.RegisteredWebinar{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		jobs, err := s.postings.FindJobsByIDs(gctx, p.PostingIDs(posting.KindJob))
		if err != nil {
			return err
		}
		byID := index(jobs, func(j *posting.Job) bson.ObjectID { return j.ID })
		for _, m := range newestFirst(p.Jobs) {
			j, ok := byID[m.PostingID()]
			if !ok {
				continue
			}
			entry := models.AppliedJob{JobView: posting.NewJobView(j, now), AppliedAt: m.AppliedAt}
			if app, ok := j.Application(p.CollegeEmail); ok {
				entry.ApplicationStatus = app.Status
			}
			out.Jobs = append(out.Jobs, entry)
		}
		return nil
	})
	g.Go(func() error {
		tests, err := s.postings.FindTestsByIDs(gctx, p.PostingIDs(posting.KindTest))
		if err != nil {
			return err
		}
		byID := index(tests, func(t *posting.Test) bson.ObjectID { return t.ID })
		for _, m := range newestFirst(p.Tests) {
			if t, ok := byID[m.PostingID()]; ok {
				out.Tests = append(out.Tests, models.AppliedTest{TestView: posting.NewTestView(t, now), AppliedAt: m.AppliedAt})
			}
		}
		return nil
	})
	g.Go(func() error {
		webinars, err := s.postings.FindWebinarsByIDs(gctx, p.PostingIDs(posting.KindWebinar))
		if err != nil {
			return err
		}
		byID := index(webinars, func(w *posting.Webinar) bson.ObjectID { return w.ID })
		for _, m := range newestFirst(p.Webinars) {
			if w, ok := byID[m.PostingID()]; ok {
				out.Webinars = append(out.Webinars, models.RegisteredWebinar{WebinarView: posting.NewWebinarView(w, now), AppliedAt: m.AppliedAt})
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
	}
	return out, nil
}

func index[T any](items []*T, key func(*T) bson.ObjectID) map[bson.ObjectID]*T {
	m := make(map[bson.ObjectID]*T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}
	return m
}

func newestFirst(ms []models.Membership) []models.Membership {
	out := slices.Clone(ms)
	slices.SortStableFunc(out, func(a, b models.Membership) int { return b.AppliedAt.Compare(a.AppliedAt) })
	return out
}
