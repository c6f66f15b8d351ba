package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("MONGO_URI", "")
		t.Setenv("ADMIN_EMAILS", "")
		cfg := FromEnv()

		assert.Equal(t, ":8080", cfg.Addr)
		assert.Empty(t, cfg.Mongo.URI)
		assert.True(t, cfg.Mongo.Transactions)
		assert.Equal(t, "placement", cfg.Mongo.Database)
		assert.Equal(t, time.Minute, cfg.Postings.CacheTTL)
		assert.Equal(t, 120, cfg.RateLimitPerMinute)
		assert.Nil(t, cfg.AdminEmails)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PLACEMENT_ADDR", ":9090")
		t.Setenv("ADMIN_EMAILS", "tpo@college.edu, dean@college.edu ,")
		t.Setenv("KAFKA_BROKERS", "localhost:9092")
		t.Setenv("MONGO_TRANSACTIONS", "false")
		t.Setenv("POSTING_CACHE_TTL", "30s")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
		cfg := FromEnv()

		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, []string{"tpo@college.edu", "dean@college.edu"}, cfg.AdminEmails)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
		assert.False(t, cfg.Mongo.Transactions)
		assert.Equal(t, 30*time.Second, cfg.Postings.CacheTTL)
		assert.Equal(t, 120, cfg.RateLimitPerMinute)
	})
}
