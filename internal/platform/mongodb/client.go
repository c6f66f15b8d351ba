// Package mongodb connects to MongoDB and provides the transaction runner used by
// the lifecycle service when the document store is configured.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"placement/internal/platform/config"
)

// Collection names.
const (
	CollectionProfiles = "profiles"
	CollectionJobs     = "jobs"
	CollectionTests    = "tests"
	CollectionWebinars = "webinars"
)

// Client wraps the driver client with the configured database.
type Client struct {
	*mongo.Client
	db *mongo.Database
}

// Connect dials MongoDB and pings the primary.
// Returns nil if the URI is empty (document store not configured).
func Connect(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	if cfg.URI == "" {
		return nil, nil
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &Client{Client: client, db: client.Database(cfg.Database)}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Health pings the primary.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	profileIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "collegeEmail", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_college_email"),
		},
		{
			Keys:    bson.D{{Key: "personalEmail", Value: 1}},
			Options: options.Index().SetName("idx_personal_email"),
		},
	}
	if _, err := db.Collection(CollectionProfiles).Indexes().CreateMany(ctx, profileIdx); err != nil {
		return fmt.Errorf("create profile indexes: %w", err)
	}

	for _, coll := range []string{CollectionJobs, CollectionTests, CollectionWebinars} {
		idx := mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_created_at_desc"),
		}
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
