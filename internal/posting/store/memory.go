package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/posting/models"
	"placement/pkg/platform/sentinel"
	"placement/pkg/platform/tx"
)

// InMemory keeps postings in maps guarded by one mutex. Conditional writes
// check and mutate under the lock, and every lifecycle write records an undo
// step on the transaction journal carried by ctx.
type InMemory struct {
	mu       sync.RWMutex
	jobs     map[bson.ObjectID]*models.Job
	tests    map[bson.ObjectID]*models.Test
	webinars map[bson.ObjectID]*models.Webinar
}

func NewInMemory() *InMemory {
	return &InMemory{
		jobs:     make(map[bson.ObjectID]*models.Job),
		tests:    make(map[bson.ObjectID]*models.Test),
		webinars: make(map[bson.ObjectID]*models.Webinar),
	}
}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

func (s *InMemory) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID.IsZero() {
		job.ID = bson.NewObjectID()
	}
	if _, ok := s.jobs[job.ID]; ok {
		return sentinel.ErrConflict
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *InMemory) FindJob(_ context.Context, id bson.ObjectID) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return job.Clone(), nil
}

func (s *InMemory) ListJobs(_ context.Context) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Clone())
	}
	sortNewestFirst(out, func(j *models.Job) (time.Time, bson.ObjectID) { return j.CreatedAt, j.ID })
	return out, nil
}

func (s *InMemory) FindJobsByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Job, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if j, ok := s.jobs[id]; ok {
			out = append(out, j.Clone())
		}
	}
	sortNewestFirst(out, func(j *models.Job) (time.Time, bson.ObjectID) { return j.CreatedAt, j.ID })
	return out, nil
}

// UpdateJobContent replaces content fields; applicant lists and CreatedAt are kept.
func (s *InMemory) UpdateJobContent(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[job.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := job.Clone()
	next.StudentsApplied = stored.StudentsApplied
	next.StudentsNotInterested = stored.StudentsNotInterested
	next.CreatedAt = stored.CreatedAt
	s.jobs[job.ID] = next
	return nil
}

func (s *InMemory) DeleteJob(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

// AddJobApplication appends app unless its email already applied and returns
// the new applicant count.
func (s *InMemory) AddJobApplication(ctx context.Context, id bson.ObjectID, app models.Application) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if job.HasApplicant(app.Email) {
		return 0, sentinel.ErrConflict
	}
	job.StudentsApplied = append(job.StudentsApplied, app)
	job.UpdatedAt = app.AppliedAt
	tx.RecordUndo(ctx, func() { s.dropJobApplication(id, app.Email) })
	return len(job.StudentsApplied), nil
}

// RemoveJobApplication pulls the email's entry and returns the remaining count.
func (s *InMemory) RemoveJobApplication(ctx context.Context, id bson.ObjectID, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	i := slices.IndexFunc(job.StudentsApplied, func(a models.Application) bool { return a.Email == email })
	if i < 0 {
		return 0, sentinel.ErrNotFound
	}
	removed := job.StudentsApplied[i]
	job.StudentsApplied = slices.Delete(job.StudentsApplied, i, i+1)
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if j, ok := s.jobs[id]; ok && !j.HasApplicant(email) {
			j.StudentsApplied = slices.Insert(j.StudentsApplied, min(i, len(j.StudentsApplied)), removed)
		}
	})
	return len(job.StudentsApplied), nil
}

func (s *InMemory) AddJobNotInterested(ctx context.Context, id bson.ObjectID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if job.IsNotInterested(email) {
		return sentinel.ErrConflict
	}
	job.StudentsNotInterested = append(job.StudentsNotInterested, email)
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if j, ok := s.jobs[id]; ok {
			j.StudentsNotInterested = slices.DeleteFunc(j.StudentsNotInterested, func(e string) bool { return e == email })
		}
	})
	return nil
}

// SetJobApplicationStatus updates the status of email's application.
func (s *InMemory) SetJobApplicationStatus(_ context.Context, id bson.ObjectID, email string, status models.ApplicationStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	app, ok := job.Application(email)
	if !ok {
		return sentinel.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = &at
	job.UpdatedAt = at
	return nil
}

func (s *InMemory) dropJobApplication(id bson.ObjectID, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.StudentsApplied = slices.DeleteFunc(j.StudentsApplied, func(a models.Application) bool { return a.Email == email })
	}
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func (s *InMemory) CreateTest(_ context.Context, t *models.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = bson.NewObjectID()
	}
	if _, ok := s.tests[t.ID]; ok {
		return sentinel.ErrConflict
	}
	s.tests[t.ID] = t.Clone()
	return nil
}

func (s *InMemory) FindTest(_ context.Context, id bson.ObjectID) (*models.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *InMemory) ListTests(_ context.Context) ([]*models.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Test, 0, len(s.tests))
	for _, t := range s.tests {
		out = append(out, t.Clone())
	}
	sortNewestFirst(out, func(t *models.Test) (time.Time, bson.ObjectID) { return t.CreatedAt, t.ID })
	return out, nil
}

func (s *InMemory) FindTestsByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Test, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if t, ok := s.tests[id]; ok {
			out = append(out, t.Clone())
		}
	}
	sortNewestFirst(out, func(t *models.Test) (time.Time, bson.ObjectID) { return t.CreatedAt, t.ID })
	return out, nil
}

func (s *InMemory) UpdateTestContent(_ context.Context, t *models.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tests[t.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := t.Clone()
	next.StudentsApplied = stored.StudentsApplied
	next.CreatedAt = stored.CreatedAt
	s.tests[t.ID] = next
	return nil
}

func (s *InMemory) DeleteTest(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tests[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tests, id)
	return nil
}

// -----------------------------------------------------------------------------
// Webinars
// -----------------------------------------------------------------------------

func (s *InMemory) CreateWebinar(_ context.Context, w *models.Webinar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID.IsZero() {
		w.ID = bson.NewObjectID()
	}
	if _, ok := s.webinars[w.ID]; ok {
		return sentinel.ErrConflict
	}
	s.webinars[w.ID] = w.Clone()
	return nil
}

func (s *InMemory) FindWebinar(_ context.Context, id bson.ObjectID) (*models.Webinar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.webinars[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return w.Clone(), nil
}

func (s *InMemory) ListWebinars(_ context.Context) ([]*models.Webinar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Webinar, 0, len(s.webinars))
	for _, w := range s.webinars {
		out = append(out, w.Clone())
	}
	sortNewestFirst(out, func(w *models.Webinar) (time.Time, bson.ObjectID) { return w.CreatedAt, w.ID })
	return out, nil
}

func (s *InMemory) FindWebinarsByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Webinar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Webinar, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if w, ok := s.webinars[id]; ok {
			out = append(out, w.Clone())
		}
	}
	sortNewestFirst(out, func(w *models.Webinar) (time.Time, bson.ObjectID) { return w.CreatedAt, w.ID })
	return out, nil
}

func (s *InMemory) UpdateWebinarContent(_ context.Context, w *models.Webinar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.webinars[w.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := w.Clone()
	next.StudentsApplied = stored.StudentsApplied
	next.CreatedAt = stored.CreatedAt
	s.webinars[w.ID] = next
	return nil
}

func (s *InMemory) DeleteWebinar(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.webinars[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.webinars, id)
	return nil
}

// -----------------------------------------------------------------------------
// Test/webinar registrants
// -----------------------------------------------------------------------------

// AddRegistrant appends email to a test or webinar unless already present and
// returns the new registrant count.
func (s *InMemory) AddRegistrant(ctx context.Context, kind models.Kind, id bson.ObjectID, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.registrants(kind, id)
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if slices.Contains(*list, email) {
		return 0, sentinel.ErrConflict
	}
	*list = append(*list, email)
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if l, ok := s.registrants(kind, id); ok {
			*l = slices.DeleteFunc(*l, func(e string) bool { return e == email })
		}
	})
	return len(*list), nil
}

// RemoveRegistrant pulls email and returns the remaining count.
func (s *InMemory) RemoveRegistrant(ctx context.Context, kind models.Kind, id bson.ObjectID, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.registrants(kind, id)
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	i := slices.Index(*list, email)
	if i < 0 {
		return 0, sentinel.ErrNotFound
	}
	*list = slices.Delete(*list, i, i+1)
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if l, ok := s.registrants(kind, id); ok && !slices.Contains(*l, email) {
			*l = slices.Insert(*l, min(i, len(*l)), email)
		}
	})
	return len(*list), nil
}

// registrants must be called with s.mu held.
func (s *InMemory) registrants(kind models.Kind, id bson.ObjectID) (*[]string, bool) {
	switch kind {
	case models.KindTest:
		if t, ok := s.tests[id]; ok {
			return &t.StudentsApplied, true
		}
	case models.KindWebinar:
		if w, ok := s.webinars[id]; ok {
			return &w.StudentsApplied, true
		}
	}
	return nil, false
}

func sortNewestFirst[T any](items []T, key func(T) (time.Time, bson.ObjectID)) {
	slices.SortFunc(items, func(a, b T) int {
		ta, ia := key(a)
		tb, ib := key(b)
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return cmp.Compare(ib.Hex(), ia.Hex())
	})
}

func uniqueIDs(ids []bson.ObjectID) []bson.ObjectID {
	seen := make(map[bson.ObjectID]bool, len(ids))
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
