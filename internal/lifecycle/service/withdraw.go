package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/audit"
	"placement/internal/lifecycle/models"
	posting "placement/internal/posting/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/sentinel"
)

var withdrawals = map[posting.Kind]struct {
	message string
	action  audit.Action
}{
	posting.KindJob:     {"Application withdrawn successfully", audit.ActionJobWithdrawn},
	posting.KindTest:    {"Withdrawn successfully", audit.ActionTestWithdrawn},
	posting.KindWebinar: {"Registration withdrawn successfully", audit.ActionWebinarWithdrawn},
}

// Withdraw removes the caller from a posting's applicants and drops the
// membership from their profile. Count is the remaining applicant count.
func (s *Service) Withdraw(ctx context.Context, kind posting.Kind, rawID, email string) (out models.Outcome, err error) {
	ctx, span := s.begin(ctx, "withdraw", kind, rawID)
	defer func() { s.end(ctx, span, "withdraw", kind, err) }()

	w, ok := withdrawals[kind]
	if !ok {
		return models.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "unsupported posting kind")
	}
	email = strings.TrimSpace(email)
	if err := authorizeSelf(ctx, email, "withdraw"); err != nil {
		return models.Outcome{}, err
	}
	id, err := parseID(kind, rawID)
	if err != nil {
		return models.Outcome{}, err
	}
	if err := s.ensurePosting(ctx, kind, id); err != nil {
		return models.Outcome{}, err
	}

	var remaining int
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if kind == posting.KindJob {
			remaining, err = s.postings.RemoveJobApplication(ctx, id, email)
		} else {
			remaining, err = s.postings.RemoveRegistrant(ctx, kind, id, email)
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Application not found")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to withdraw")
		}
		err = s.profiles.RemoveMembership(ctx, email, kind, id)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
		}
		return nil
	})
	if err != nil {
		return models.Outcome{}, err
	}

	s.committed(ctx, kind, w.action, id, email, "")
	return models.Outcome{Message: w.message, Count: remaining}, nil
}

func (s *Service) ensurePosting(ctx context.Context, kind posting.Kind, id bson.ObjectID) error {
	var err error
	switch kind {
	case posting.KindJob:
		_, err = s.postings.FindJob(ctx, id)
	case posting.KindTest:
		_, err = s.postings.FindTest(ctx, id)
	case posting.KindWebinar:
		_, err = s.postings.FindWebinar(ctx, id)
	}
	if err != nil {
		return postingNotFound(err, kind)
	}
	return nil
}
