package service

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/posting/models"
)

// ListJobs returns every job newest first, classified against the request time.
func (s *Service) ListJobs(ctx context.Context) ([]models.JobView, error) {
	jobs, err := cachedList(ctx, s, models.KindJob, s.store.ListJobs)
	if err != nil {
		return nil, translate(err, models.KindJob, "list")
	}
	now := s.now(ctx)
	views := make([]models.JobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, models.NewJobView(j, now))
	}
	return views, nil
}

func (s *Service) GetJob(ctx context.Context, rawID string) (models.JobView, error) {
	id, err := ParseID(models.KindJob, rawID)
	if err != nil {
		return models.JobView{}, err
	}
	job, err := s.store.FindJob(ctx, id)
	if err != nil {
		return models.JobView{}, translate(err, models.KindJob, "load")
	}
	return models.NewJobView(job, s.now(ctx)), nil
}

// JobsByIDs returns details for the given ids. Malformed and unknown ids are
// skipped.
func (s *Service) JobsByIDs(ctx context.Context, rawIDs []string) ([]models.JobView, error) {
	ids := make([]bson.ObjectID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		if id, err := bson.ObjectIDFromHex(raw); err == nil {
			ids = append(ids, id)
		}
	}
	views := []models.JobView{}
	if len(ids) == 0 {
		return views, nil
	}
	jobs, err := s.store.FindJobsByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, models.KindJob, "load")
	}
	now := s.now(ctx)
	for _, j := range jobs {
		views = append(views, models.NewJobView(j, now))
	}
	return views, nil
}

func (s *Service) ListTests(ctx context.Context) ([]models.TestView, error) {
	tests, err := cachedList(ctx, s, models.KindTest, s.store.ListTests)
	if err != nil {
		return nil, translate(err, models.KindTest, "list")
	}
	now := s.now(ctx)
	views := make([]models.TestView, 0, len(tests))
	for _, t := range tests {
		views = append(views, models.NewTestView(t, now))
	}
	return views, nil
}

func (s *Service) GetTest(ctx context.Context, rawID string) (models.TestView, error) {
	id, err := ParseID(models.KindTest, rawID)
	if err != nil {
		return models.TestView{}, err
	}
	t, err := s.store.FindTest(ctx, id)
	if err != nil {
		return models.TestView{}, translate(err, models.KindTest, "load")
	}
	return models.NewTestView(t, s.now(ctx)), nil
}

func (s *Service) ListWebinars(ctx context.Context) ([]models.WebinarView, error) {
	webinars, err := cachedList(ctx, s, models.KindWebinar, s.store.ListWebinars)
	if err != nil {
		return nil, translate(err, models.KindWebinar, "list")
	}
	now := s.now(ctx)
	views := make([]models.WebinarView, 0, len(webinars))
	for _, w := range webinars {
		views = append(views, models.NewWebinarView(w, now))
	}
	return views, nil
}

func (s *Service) GetWebinar(ctx context.Context, rawID string) (models.WebinarView, error) {
	id, err := ParseID(models.KindWebinar, rawID)
	if err != nil {
		return models.WebinarView{}, err
	}
	w, err := s.store.FindWebinar(ctx, id)
	if err != nil {
		return models.WebinarView{}, translate(err, models.KindWebinar, "load")
	}
	return models.NewWebinarView(w, s.now(ctx)), nil
}
