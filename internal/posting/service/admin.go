package service

import (
	"context"
	"slices"

	"placement/internal/audit"
	"placement/internal/posting/models"
	profile "placement/internal/profile/models"
	dErrors "placement/pkg/domain-errors"
)

func (s *Service) CreateJob(ctx context.Context, in *models.JobInput) (*models.Job, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now(ctx)
	job := &models.Job{
		PostedAt:              &now,
		StudentsApplied:       []models.Application{},
		StudentsNotInterested: []string{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	in.ApplyTo(job)
	job.Description = s.sanitizer.Sanitize(job.Description)
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, translate(err, models.KindJob, "create")
	}
	s.invalidate(ctx, models.KindJob)
	s.logAudit(ctx, audit.ActionPostingCreated, models.KindJob, job.ID)
	return job, nil
}

// UpdateJob replaces the job's content. Applicant lists are not touched.
func (s *Service) UpdateJob(ctx context.Context, rawID string, in *models.JobInput) (*models.Job, error) {
	id, err := ParseID(models.KindJob, rawID)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	job, err := s.store.FindJob(ctx, id)
	if err != nil {
		return nil, translate(err, models.KindJob, "load")
	}
	in.ApplyTo(job)
	job.Description = s.sanitizer.Sanitize(job.Description)
	job.UpdatedAt = s.now(ctx)
	if err := s.store.UpdateJobContent(ctx, job); err != nil {
		return nil, translate(err, models.KindJob, "update")
	}
	s.invalidate(ctx, models.KindJob)
	s.logAudit(ctx, audit.ActionPostingUpdated, models.KindJob, id)
	return job, nil
}

func (s *Service) DeleteJob(ctx context.Context, rawID string) error {
	id, err := ParseID(models.KindJob, rawID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return translate(err, models.KindJob, "delete")
	}
	s.invalidate(ctx, models.KindJob)
	s.logAudit(ctx, audit.ActionPostingDeleted, models.KindJob, id)
	return nil
}

func (s *Service) CreateTest(ctx context.Context, in *models.TestInput) (*models.Test, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now(ctx)
	t := &models.Test{StudentsApplied: []string{}, CreatedAt: now, UpdatedAt: now}
	in.ApplyTo(t)
	t.Description = s.sanitizer.Sanitize(t.Description)
	if err := s.store.CreateTest(ctx, t); err != nil {
		return nil, translate(err, models.KindTest, "create")
	}
	s.invalidate(ctx, models.KindTest)
	s.logAudit(ctx, audit.ActionPostingCreated, models.KindTest, t.ID)
	return t, nil
}

func (s *Service) UpdateTest(ctx context.Context, rawID string, in *models.TestInput) (*models.Test, error) {
	id, err := ParseID(models.KindTest, rawID)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.store.FindTest(ctx, id)
	if err != nil {
		return nil, translate(err, models.KindTest, "load")
	}
	in.ApplyTo(t)
	t.Description = s.sanitizer.Sanitize(t.Description)
	t.UpdatedAt = s.now(ctx)
	if err := s.store.UpdateTestContent(ctx, t); err != nil {
		return nil, translate(err, models.KindTest, "update")
	}
	s.invalidate(ctx, models.KindTest)
	s.logAudit(ctx, audit.ActionPostingUpdated, models.KindTest, id)
	return t, nil
}

func (s *Service) DeleteTest(ctx context.Context, rawID string) error {
	id, err := ParseID(models.KindTest, rawID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTest(ctx, id); err != nil {
		return translate(err, models.KindTest, "delete")
	}
	s.invalidate(ctx, models.KindTest)
	s.logAudit(ctx, audit.ActionPostingDeleted, models.KindTest, id)
	return nil
}

func (s *Service) CreateWebinar(ctx context.Context, in *models.WebinarInput) (*models.Webinar, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now(ctx)
	w := &models.Webinar{StudentsApplied: []string{}, CreatedAt: now, UpdatedAt: now}
	in.ApplyTo(w)
	w.Description = s.sanitizer.Sanitize(w.Description)
	if err := s.store.CreateWebinar(ctx, w); err != nil {
		return nil, translate(err, models.KindWebinar, "create")
	}
	s.invalidate(ctx, models.KindWebinar)
	s.logAudit(ctx, audit.ActionPostingCreated, models.KindWebinar, w.ID)
	return w, nil
}

func (s *Service) UpdateWebinar(ctx context.Context, rawID string, in *models.WebinarInput) (*models.Webinar, error) {
	id, err := ParseID(models.KindWebinar, rawID)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	w, err := s.store.FindWebinar(ctx, id)
	if err != nil {
		return nil, translate(err, models.KindWebinar, "load")
	}
	in.ApplyTo(w)
	w.Description = s.sanitizer.Sanitize(w.Description)
	w.UpdatedAt = s.now(ctx)
	if err := s.store.UpdateWebinarContent(ctx, w); err != nil {
		return nil, translate(err, models.KindWebinar, "update")
	}
	s.invalidate(ctx, models.KindWebinar)
	s.logAudit(ctx, audit.ActionPostingUpdated, models.KindWebinar, id)
	return w, nil
}

func (s *Service) DeleteWebinar(ctx context.Context, rawID string) error {
	id, err := ParseID(models.KindWebinar, rawID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteWebinar(ctx, id); err != nil {
		return translate(err, models.KindWebinar, "delete")
	}
	s.invalidate(ctx, models.KindWebinar)
	s.logAudit(ctx, audit.ActionPostingDeleted, models.KindWebinar, id)
	return nil
}

// NotInterestedStudents lists the job's opt-outs joined with their profiles.
func (s *Service) NotInterestedStudents(ctx context.Context, rawID string) ([]models.StudentSummary, error) {
	id, err := ParseID(models.KindJob, rawID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.FindJob(ctx, id)
	if err != nil {
		return nil, translate(err, models.KindJob, "load")
	}
	return s.summaries(ctx, job.StudentsNotInterested)
}

// WebinarRegistrants lists the webinar's registrants joined with their profiles.
func (s *Service) WebinarRegistrants(ctx context.Context, rawID string) ([]models.StudentSummary, error) {
	id, err := ParseID(models.KindWebinar, rawID)
	if err != nil {
		return nil, err
	}
	w, err := s.store.FindWebinar(ctx, id)
	if err != nil {
		return nil, translate(err, models.KindWebinar, "load")
	}
	return s.summaries(ctx, w.StudentsApplied)
}

// summaries keeps the order of emails. An email without a profile is returned
// on its own.
func (s *Service) summaries(ctx context.Context, emails []string) ([]models.StudentSummary, error) {
	out := make([]models.StudentSummary, 0, len(emails))
	if len(emails) == 0 {
		return out, nil
	}
	profiles, err := s.profiles.FindByEmails(ctx, emails)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load student profiles")
	}
	for _, email := range emails {
		i := slices.IndexFunc(profiles, func(p *profile.Profile) bool {
			return p.CollegeEmail == email || p.PersonalEmail == email
		})
		if i < 0 {
			out = append(out, models.StudentSummary{Email: email})
			continue
		}
		out = append(out, profiles[i].Summary(email))
	}
	return out, nil
}

