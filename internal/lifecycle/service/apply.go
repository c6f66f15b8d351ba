package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/audit"
	"placement/internal/deadline"
	"placement/internal/eligibility"
	"placement/internal/lifecycle/models"
	posting "placement/internal/posting/models"
	profile "placement/internal/profile/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/sentinel"
	"placement/pkg/requestcontext"
)

// ApplyJob submits a structured application for the caller and records the
// membership on their profile in one transaction.
func (s *Service) ApplyJob(ctx context.Context, rawID string, req models.JobApplication) (out models.Outcome, err error) {
	ctx, span := s.begin(ctx, "apply", posting.KindJob, rawID)
	defer func() { s.end(ctx, span, "apply", posting.KindJob, err) }()

	id, err := parseID(posting.KindJob, rawID)
	if err != nil {
		return models.Outcome{}, err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Responses == nil || req.AppliedAt.IsZero() {
		return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "Missing required application data (email, responses, appliedAt)")
	}
	if err := authorizeSelf(ctx, email, "apply"); err != nil {
		return models.Outcome{}, err
	}
	for _, r := range req.Responses {
		if strings.TrimSpace(r.FieldName) == "" || r.Absent {
			return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "Each response must have fieldName and value")
		}
	}

	job, err := s.postings.FindJob(ctx, id)
	if err != nil {
		return models.Outcome{}, postingNotFound(err, posting.KindJob)
	}
	if job.HasApplicant(email) {
		return models.Outcome{}, dErrors.New(dErrors.CodeConflict, "You have already applied for this job")
	}
	now := requestcontext.Now(ctx)
	if job.Deadline != nil && deadline.IsPast(*job.Deadline, now) {
		return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "Application deadline has passed")
	}
	if err := validateResponses(job.InputFields, req.Responses); err != nil {
		return models.Outcome{}, err
	}
	if err := s.requireEligible(ctx, email, job); err != nil {
		return models.Outcome{}, err
	}

	app := posting.Application{
		Email:         email,
		Responses:     req.Responses,
		AppliedAt:     req.AppliedAt,
		ApplicantName: applicantName(ctx, email),
		Status:        posting.StatusPending,
	}
	var count int
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.postings.AddJobApplication(ctx, id, app)
		if err != nil {
			return addError(err, posting.KindJob, "You have already applied for this job")
		}
		count = n
		err = s.profiles.AddMembership(ctx, email, posting.KindJob, profile.NewMembership(posting.KindJob, id, now))
		if errors.Is(err, sentinel.ErrConflict) {
			// A stale membership from an earlier partial write is harmless.
			return nil
		}
		return membershipError(err)
	})
	if err != nil {
		return models.Outcome{}, err
	}

	s.committed(ctx, posting.KindJob, audit.ActionJobApplied, id, email, "")
	return models.Outcome{Message: "Application submitted successfully", Count: count}, nil
}

// ApplyTest registers the caller for a test.
func (s *Service) ApplyTest(ctx context.Context, rawID string, req models.Registration) (out models.Outcome, err error) {
	ctx, span := s.begin(ctx, "apply", posting.KindTest, rawID)
	defer func() { s.end(ctx, span, "apply", posting.KindTest, err) }()

	id, email, err := s.checkRegistration(ctx, posting.KindTest, rawID, req, "apply")
	if err != nil {
		return models.Outcome{}, err
	}
	test, err := s.postings.FindTest(ctx, id)
	if err != nil {
		return models.Outcome{}, postingNotFound(err, posting.KindTest)
	}
	if test.HasApplicant(email) {
		return models.Outcome{}, dErrors.New(dErrors.CodeConflict, "Already applied for this test")
	}
	if test.Deadline != nil && deadline.IsPast(*test.Deadline, requestcontext.Now(ctx)) {
		return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "Test deadline has passed")
	}

	count, err := s.register(ctx, posting.KindTest, id, email, "Already applied for this test")
	if err != nil {
		return models.Outcome{}, err
	}
	s.committed(ctx, posting.KindTest, audit.ActionTestApplied, id, email, "")
	return models.Outcome{Message: "Applied successfully", Count: count}, nil
}

// RegisterWebinar registers the caller for a webinar that has not taken place.
func (s *Service) RegisterWebinar(ctx context.Context, rawID string, req models.Registration) (out models.Outcome, err error) {
	ctx, span := s.begin(ctx, "apply", posting.KindWebinar, rawID)
	defer func() { s.end(ctx, span, "apply", posting.KindWebinar, err) }()

	id, email, err := s.checkRegistration(ctx, posting.KindWebinar, rawID, req, "register")
	if err != nil {
		return models.Outcome{}, err
	}
	webinar, err := s.postings.FindWebinar(ctx, id)
	if err != nil {
		return models.Outcome{}, postingNotFound(err, posting.KindWebinar)
	}
	if webinar.HasApplicant(email) {
		return models.Outcome{}, dErrors.New(dErrors.CodeConflict, "Already registered for this webinar")
	}
	if webinar.Date != nil && deadline.IsPast(*webinar.Date, requestcontext.Now(ctx)) {
		return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "Webinar has already taken place")
	}

	count, err := s.register(ctx, posting.KindWebinar, id, email, "Already registered for this webinar")
	if err != nil {
		return models.Outcome{}, err
	}
	s.committed(ctx, posting.KindWebinar, audit.ActionWebinarRegistered, id, email, "")
	return models.Outcome{Message: "Successfully registered for webinar", Count: count}, nil
}

func (s *Service) checkRegistration(ctx context.Context, kind posting.Kind, rawID string, req models.Registration, verb string) (bson.ObjectID, string, error) {
	id, err := parseID(kind, rawID)
	if err != nil {
		return bson.NilObjectID, "", err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return bson.NilObjectID, "", dErrors.New(dErrors.CodeBadRequest, "Email is required")
	}
	if err := authorizeSelf(ctx, email, verb); err != nil {
		return bson.NilObjectID, "", err
	}
	return id, email, nil
}

// register appends a bare registrant and the profile membership together.
func (s *Service) register(ctx context.Context, kind posting.Kind, id bson.ObjectID, email, duplicate string) (int, error) {
	p, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return 0, membershipError(err)
	}
	if p.HasMembership(kind, id) {
		return 0, dErrors.New(dErrors.CodeConflict, duplicate)
	}

	var count int
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.postings.AddRegistrant(ctx, kind, id, email)
		if err != nil {
			return addError(err, kind, duplicate)
		}
		count = n
		err = s.profiles.AddMembership(ctx, email, kind, profile.NewMembership(kind, id, requestcontext.Now(ctx)))
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, duplicate)
		}
		return membershipError(err)
	})
	return count, err
}

// requireEligible gates job actions on the caller's batch. A caller without a
// profile has no batch and is not eligible.
func (s *Service) requireEligible(ctx context.Context, email string, job *posting.Job) error {
	res, err := s.eligibility(ctx, email, job)
	if err != nil {
		return err
	}
	if !res.Eligible {
		return dErrors.New(dErrors.CodeNotEligible, "You are not eligible for this job")
	}
	return nil
}

func (s *Service) eligibility(ctx context.Context, email string, job *posting.Job) (eligibility.Result, error) {
	p, err := s.profiles.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return eligibility.Result{}, nil
	}
	if err != nil {
		return eligibility.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return eligibility.Evaluate(p.Batch(), job.Eligibility), nil
}

func addError(err error, kind posting.Kind, duplicate string) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, duplicate)
	}
	return postingNotFound(err, kind)
}

// membershipError translates profile store failures; nil stays nil.
func membershipError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}
}
