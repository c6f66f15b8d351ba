package service

import (
	"context"
	"errors"
	"strings"

	"placement/internal/audit"
	"placement/internal/eligibility"
	"placement/internal/lifecycle/models"
	posting "placement/internal/posting/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/sentinel"
	"placement/pkg/requestcontext"
)

// NotInterested records that the caller declines a job. It does not touch the
// applicant list or the profile.
func (s *Service) NotInterested(ctx context.Context, rawID string, req models.NotInterestedRequest) (out models.Outcome, err error) {
	ctx, span := s.begin(ctx, "not_interested", posting.KindJob, rawID)
	defer func() { s.end(ctx, span, "not_interested", posting.KindJob, err) }()

	email := strings.TrimSpace(req.Email)
	if err := authorizeSelf(ctx, email, "update"); err != nil {
		return models.Outcome{}, err
	}
	if !req.NotInterested {
		return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "notInterested must be true")
	}
	id, err := parseID(posting.KindJob, rawID)
	if err != nil {
		return models.Outcome{}, err
	}
	job, err := s.postings.FindJob(ctx, id)
	if err != nil {
		return models.Outcome{}, postingNotFound(err, posting.KindJob)
	}
	if job.IsNotInterested(email) {
		return models.Outcome{}, dErrors.New(dErrors.CodeConflict, "Already marked as not interested")
	}
	if err := s.requireEligible(ctx, email, job); err != nil {
		return models.Outcome{}, err
	}

	if err := s.postings.AddJobNotInterested(ctx, id, email); err != nil {
		return models.Outcome{}, addError(err, posting.KindJob, "Already marked as not interested")
	}

	s.committed(ctx, posting.KindJob, audit.ActionJobNotInterested, id, email, "")
	return models.Outcome{Message: "Marked as not interested"}, nil
}

// UpdateApplicationStatus moves one application to a new status. Callers are
// expected to have passed the admin gate.
func (s *Service) UpdateApplicationStatus(ctx context.Context, rawID string, req models.StatusUpdate) (out models.Outcome, err error) {
	ctx, span := s.begin(ctx, "status_update", posting.KindJob, rawID)
	defer func() { s.end(ctx, span, "status_update", posting.KindJob, err) }()

	if !req.NewStatus.IsValid() {
		return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "Invalid status. Must be one of: pending, reviewed, accepted, rejected")
	}
	id, err := parseID(posting.KindJob, rawID)
	if err != nil {
		return models.Outcome{}, err
	}
	email := strings.TrimSpace(req.ApplicationEmail)
	err = s.postings.SetJobApplicationStatus(ctx, id, email, req.NewStatus, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Outcome{}, dErrors.New(dErrors.CodeNotFound, "Job or application not found")
	}
	if err != nil {
		return models.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application status")
	}

	s.committed(ctx, posting.KindJob, audit.ActionApplicationStatus, id, email, string(req.NewStatus))
	return models.Outcome{Message: "Application status updated successfully"}, nil
}

// CheckEligibility reports whether the caller's batch matches the job.
func (s *Service) CheckEligibility(ctx context.Context, rawID string) (res eligibility.Result, err error) {
	ctx, span := s.begin(ctx, "eligibility", posting.KindJob, rawID)
	defer func() { s.end(ctx, span, "eligibility", posting.KindJob, err) }()

	id, err := parseID(posting.KindJob, rawID)
	if err != nil {
		return eligibility.Result{}, err
	}
	job, err := s.postings.FindJob(ctx, id)
	if err != nil {
		return eligibility.Result{}, postingNotFound(err, posting.KindJob)
	}
	return s.eligibility(ctx, requestcontext.Email(ctx), job)
}
