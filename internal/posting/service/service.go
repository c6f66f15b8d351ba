package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/audit"
	"placement/internal/platform/metrics"
	"placement/internal/posting/models"
	profile "placement/internal/profile/models"
	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/sentinel"
	"placement/pkg/requestcontext"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks placement/internal/posting/service ListCache,AuditPublisher

type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	FindJob(ctx context.Context, id bson.ObjectID) (*models.Job, error)
	ListJobs(ctx context.Context) ([]*models.Job, error)
	FindJobsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Job, error)
	UpdateJobContent(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id bson.ObjectID) error

	CreateTest(ctx context.Context, t *models.Test) error
	FindTest(ctx context.Context, id bson.ObjectID) (*models.Test, error)
	ListTests(ctx context.Context) ([]*models.Test, error)
	UpdateTestContent(ctx context.Context, t *models.Test) error
	DeleteTest(ctx context.Context, id bson.ObjectID) error

	CreateWebinar(ctx context.Context, w *models.Webinar) error
	FindWebinar(ctx context.Context, id bson.ObjectID) (*models.Webinar, error)
	ListWebinars(ctx context.Context) ([]*models.Webinar, error)
	UpdateWebinarContent(ctx context.Context, w *models.Webinar) error
	DeleteWebinar(ctx context.Context, id bson.ObjectID) error
}

// ProfileReader resolves applicant emails to profiles for admin views.
type ProfileReader interface {
	FindByEmails(ctx context.Context, emails []string) ([]*profile.Profile, error)
}

// ListCache holds serialised posting lists between writes.
type ListCache interface {
	Get(ctx context.Context, kind models.Kind, dst any) (bool, error)
	Set(ctx context.Context, kind models.Kind, v any) error
	Invalidate(ctx context.Context, kinds ...models.Kind) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service serves posting reads to students and posting CRUD to admins.
type Service struct {
	store          Store
	profiles       ProfileReader
	cache          ListCache
	sanitizer      *bluemonday.Policy
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

// WithCache enables read-through caching of posting lists.
func WithCache(c ListCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func New(store Store, profiles ProfileReader, opts ...Option) *Service {
	s := &Service{store: store, profiles: profiles, sanitizer: descriptionPolicy()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseID converts a path id. Malformed ids are a 400.
func ParseID(kind models.Kind, raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.NilObjectID, dErrors.New(dErrors.CodeBadRequest, "invalid "+string(kind)+" id")
	}
	return id, nil
}

func translate(err error, kind models.Kind, op string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, kind.Label()+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op+" "+string(kind))
}

// cachedList returns the kind's list, consulting the cache first. Cache
// failures fall through to the store.
func cachedList[T any](ctx context.Context, s *Service, kind models.Kind, load func(context.Context) ([]*T, error)) ([]*T, error) {
	if s.cache != nil {
		var items []*T
		hit, err := s.cache.Get(ctx, kind, &items)
		if err != nil {
			s.logWarn(ctx, "posting cache read failed", "kind", kind, "error", err)
		}
		s.metrics.IncrementCacheLookup(string(kind), hit)
		if hit {
			return items, nil
		}
	}
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, kind, items); err != nil {
			s.logWarn(ctx, "posting cache write failed", "kind", kind, "error", err)
		}
	}
	return items, nil
}

func (s *Service) invalidate(ctx context.Context, kind models.Kind) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, kind); err != nil {
		s.logWarn(ctx, "posting cache invalidation failed", "kind", kind, "error", err)
	}
}

func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.WarnContext(ctx, msg, args...)
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, kind models.Kind, id bson.ObjectID) {
	actor := requestcontext.Email(ctx)
	if s.logger != nil {
		args := []any{"event", string(action), "log_type", "audit", "kind", kind, "posting_id", id.Hex(), "actor", actor}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		s.logger.InfoContext(ctx, string(action), args...)
	}
	s.metrics.IncrementPostingChanged(string(kind), string(action))
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:      action,
		Actor:       actor,
		PostingKind: string(kind),
		PostingID:   id.Hex(),
	}); err != nil {
		s.logWarn(ctx, "failed to publish audit event", "action", action, "error", err)
	}
}
