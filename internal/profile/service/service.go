package service

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/audit"
	"placement/internal/platform/metrics"
	posting "placement/internal/posting/models"
	"placement/internal/profile/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/sentinel"
	"placement/pkg/requestcontext"
)

type ProfileStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

// PostingReader resolves membership ids for the dashboard.
type PostingReader interface {
	FindJobsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*posting.Job, error)
	FindTestsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*posting.Test, error)
	FindWebinarsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*posting.Webinar, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service manages the caller's own profile.
type Service struct {
	profiles       ProfileStore
	postings       PostingReader
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(profiles ProfileStore, postings PostingReader, opts ...Option) *Service {
	s := &Service{profiles: profiles, postings: postings}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func callerEmail(ctx context.Context) (string, error) {
	email := requestcontext.Email(ctx)
	if email == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return email, nil
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context) (*models.Profile, error) {
	email, err := callerEmail(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

// Save registers the caller or updates their editable fields. The college
// email always comes from the verified identity.
func (s *Service) Save(ctx context.Context, in *models.ProfileInput) (*models.Profile, error) {
	email, err := callerEmail(ctx)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p := &models.Profile{CollegeEmail: email, CreatedAt: now, UpdatedAt: now}
	in.ApplyTo(p)
	saved, err := s.profiles.Save(ctx, p)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "profile was modified concurrently")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}

	if s.metrics != nil {
		s.metrics.IncrementProfilesSaved()
	}
	s.logAudit(ctx, email)
	return saved, nil
}

func (s *Service) logAudit(ctx context.Context, email string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(audit.ActionProfileSaved),
			"event", string(audit.ActionProfileSaved),
			"log_type", "audit",
			"email", email,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{Action: audit.ActionProfileSaved, Actor: email, Subject: email}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event", "error", err)
	}
}
