package main

import (
	"context"
	"log/slog"

	"placement/internal/audit"
	lifecycleservice "placement/internal/lifecycle/service"
	"placement/internal/platform/config"
	"placement/internal/platform/mongodb"
	"placement/internal/posting/cache"
	postingservice "placement/internal/posting/service"
	postingstore "placement/internal/posting/store"
	profileservice "placement/internal/profile/service"
	profilestore "placement/internal/profile/store"
	httptransport "placement/internal/transport/http"
	"placement/pkg/platform/tx"
)

type postingBackend interface {
	postingservice.Store
	lifecycleservice.PostingStore
	profileservice.PostingReader
}

type profileBackend interface {
	profileservice.ProfileStore
	postingservice.ProfileReader
	lifecycleservice.ProfileStore
}

// backends holds the stores and sinks selected by configuration, plus the
// cleanup to run on shutdown.
type backends struct {
	postings postingBackend
	profiles profileBackend
	tx       lifecycleservice.TxRunner
	cache    postingservice.ListCache
	audit    *audit.Publisher
	health   map[string]httptransport.HealthCheck

	auditWorker *audit.Worker
	auditInbox  audit.ChannelSink
	closers     []func(ctx context.Context) error
}

func openBackends(ctx context.Context, cfg config.Server, log *slog.Logger) (*backends, error) {
	b := &backends{health: map[string]httptransport.HealthCheck{}}

	mongoClient, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	if mongoClient != nil {
		db := mongoClient.Database()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = mongoClient.Close(ctx)
			return nil, err
		}
		b.postings = postingstore.NewMongo(db)
		b.profiles = profilestore.NewMongo(db)
		b.tx = mongodb.NewTxRunner(mongoClient.Client, cfg.Mongo.Transactions)
		b.health["mongo"] = mongoClient.Health
		b.closers = append(b.closers, mongoClient.Close)
		log.InfoContext(ctx, "using mongo stores", "database", cfg.Mongo.Database, "transactions", cfg.Mongo.Transactions)
	} else {
		b.postings = postingstore.NewInMemory()
		b.profiles = profilestore.NewInMemory()
		b.tx = tx.NewSharded(0)
		log.InfoContext(ctx, "MONGO_URI not set, using in-memory stores")
	}

	listCache, err := cache.Dial(ctx, cfg.Redis, cache.WithTTL(cfg.Postings.CacheTTL))
	if err != nil {
		b.close(ctx, log)
		return nil, err
	}
	if listCache != nil {
		b.cache = listCache
		b.health["redis"] = listCache.Ping
		b.closers = append(b.closers, listCache.Close)
	} else {
		b.cache = cache.Noop{}
	}

	if err := b.openAudit(ctx, cfg.Kafka, log); err != nil {
		b.close(ctx, log)
		return nil, err
	}
	return b, nil
}

// openAudit routes audit events through a buffered worker to Kafka, or into
// an in-process store when no brokers are configured.
func (b *backends) openAudit(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) error {
	if len(cfg.Brokers) == 0 {
		b.audit = audit.NewPublisher(audit.NewInMemoryStore())
		return nil
	}
	sink, err := audit.NewKafkaSink(cfg.Brokers, cfg.AuditTopic)
	if err != nil {
		return err
	}
	if err := sink.EnsureTopic(ctx, 1, 1); err != nil {
		log.WarnContext(ctx, "audit topic bootstrap failed", "topic", cfg.AuditTopic, "error", err)
	}
	b.health["kafka"] = sink.Ping
	b.auditInbox = make(audit.ChannelSink, 1024)
	b.auditWorker = audit.NewWorker(sink, b.auditInbox, log)
	b.audit = audit.NewPublisher(b.auditInbox)
	b.closers = append(b.closers, func(context.Context) error { sink.Close(); return nil })
	return nil
}

// close runs closers in reverse order of opening.
func (b *backends) close(ctx context.Context, log *slog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.ErrorContext(ctx, "failed to close backend", "error", err)
		}
	}
}
