package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"placement/internal/audit"
	"placement/internal/platform/metrics"
	posting "placement/internal/posting/models"
	profile "placement/internal/profile/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/sentinel"
	"placement/pkg/requestcontext"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks placement/internal/lifecycle/service AuditPublisher,ListInvalidator

type PostingStore interface {
	FindJob(ctx context.Context, id bson.ObjectID) (*posting.Job, error)
	FindTest(ctx context.Context, id bson.ObjectID) (*posting.Test, error)
	FindWebinar(ctx context.Context, id bson.ObjectID) (*posting.Webinar, error)
	AddJobApplication(ctx context.Context, id bson.ObjectID, app posting.Application) (int, error)
	RemoveJobApplication(ctx context.Context, id bson.ObjectID, email string) (int, error)
	AddJobNotInterested(ctx context.Context, id bson.ObjectID, email string) error
	SetJobApplicationStatus(ctx context.Context, id bson.ObjectID, email string, status posting.ApplicationStatus, at time.Time) error
	AddRegistrant(ctx context.Context, kind posting.Kind, id bson.ObjectID, email string) (int, error)
	RemoveRegistrant(ctx context.Context, kind posting.Kind, id bson.ObjectID, email string) (int, error)
}

type ProfileStore interface {
	FindByEmail(ctx context.Context, email string) (*profile.Profile, error)
	AddMembership(ctx context.Context, email string, kind posting.Kind, m profile.Membership) error
	RemoveMembership(ctx context.Context, email string, kind posting.Kind, id bson.ObjectID) error
}

// TxRunner runs the posting and profile writes of one action atomically.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// ListInvalidator drops cached posting lists after applicant lists change.
type ListInvalidator interface {
	Invalidate(ctx context.Context, kinds ...posting.Kind) error
}

// Service owns every state change of a (student, posting) pair: apply,
// withdraw, not interested and the admin status transition.
type Service struct {
	postings       PostingStore
	profiles       ProfileStore
	tx             TxRunner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	invalidator    ListInvalidator
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

func WithListInvalidator(inv ListInvalidator) Option {
	return func(s *Service) {
		s.invalidator = inv
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(postings PostingStore, profiles ProfileStore, tx TxRunner, opts ...Option) *Service {
	s := &Service{
		postings: postings,
		profiles: profiles,
		tx:       tx,
		tracer:   otel.Tracer("placement/internal/lifecycle"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin opens a span for one lifecycle action.
func (s *Service) begin(ctx context.Context, action string, kind posting.Kind, rawID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "lifecycle."+action, trace.WithAttributes(
		attribute.String("posting.kind", string(kind)),
		attribute.String("posting.id", rawID),
	))
}

// end closes the span and counts the outcome. Client errors are counted by
// code; internal errors are also logged.
func (s *Service) end(ctx context.Context, span trace.Span, action string, kind posting.Kind, err error) {
	outcome := "success"
	if err != nil {
		code := dErrors.CodeOf(err)
		outcome = string(code)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if code == dErrors.CodeInternal && s.logger != nil {
			s.logger.ErrorContext(ctx, "lifecycle action failed",
				"action", action,
				"kind", kind,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	span.SetAttributes(attribute.String("lifecycle.outcome", outcome))
	span.End()
	s.metrics.IncrementLifecycleOutcome(string(kind), action, outcome)
}

// committed runs the after-commit side effects. Failures are logged and never
// fail the request.
func (s *Service) committed(ctx context.Context, kind posting.Kind, action audit.Action, id bson.ObjectID, subject, detail string) {
	actor := requestcontext.Email(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"event", string(action),
			"log_type", "audit",
			"actor", actor,
			"posting_id", id.Hex(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, kind); err != nil {
			s.warn(ctx, "posting cache invalidation failed", err)
		}
	}
	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, audit.Event{
			Action:      action,
			Actor:       actor,
			Subject:     subject,
			PostingKind: string(kind),
			PostingID:   id.Hex(),
			Detail:      detail,
		}); err != nil {
			s.warn(ctx, "failed to publish audit event", err)
		}
	}
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
}

// authorizeSelf rejects acting on behalf of another identity.
func authorizeSelf(ctx context.Context, email, verb string) error {
	if email != requestcontext.Email(ctx) {
		return dErrors.New(dErrors.CodeForbidden, "Cannot "+verb+" on behalf of another user")
	}
	return nil
}

func parseID(kind posting.Kind, raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.NilObjectID, dErrors.New(dErrors.CodeBadRequest, "Invalid "+string(kind)+" ID")
	}
	return id, nil
}

func postingNotFound(err error, kind posting.Kind) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, kind.Label()+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+string(kind))
}

// applicantName prefers the display name from the token.
func applicantName(ctx context.Context, email string) string {
	if name := strings.TrimSpace(requestcontext.Name(ctx)); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
