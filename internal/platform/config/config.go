package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	pstrings "placement/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string
	Environment        string
	AdminEmails        []string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	DisableRateLimit   bool
	RequestTimeout     time.Duration

	Identity Identity
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Postings PostingConfig
}

// Identity configures bearer token verification.
type Identity struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// MongoConfig configures the document store. An empty URI selects in-memory stores.
type MongoConfig struct {
	URI            string
	Database       string
	Transactions   bool
	ConnectTimeout time.Duration
}

// RedisConfig configures the posting list cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event sink. No brokers keeps audit in memory.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// PostingConfig tunes posting reads.
type PostingConfig struct {
	CacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	signingKey := os.Getenv("IDENTITY_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:               getEnv("PLACEMENT_ADDR", ":8080"),
		Environment:        getEnv("ENVIRONMENT", "local"),
		AdminEmails:        pstrings.SplitList(os.Getenv("ADMIN_EMAILS")),
		CORSAllowedOrigins: pstrings.SplitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
		DisableRateLimit:   os.Getenv("DISABLE_RATE_LIMIT") == "true",
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		Identity: Identity{
			SigningKey: signingKey,
			Issuer:     getEnv("IDENTITY_ISSUER", "placement-identity"),
			Audience:   getEnv("IDENTITY_AUDIENCE", "placement-portal"),
		},
		Mongo: MongoConfig{
			URI:            os.Getenv("MONGO_URI"),
			Database:       getEnv("MONGO_DB", "placement"),
			Transactions:   getEnv("MONGO_TRANSACTIONS", "true") == "true",
			ConnectTimeout: getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    pstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "placement.audit"),
		},
		Postings: PostingConfig{
			CacheTTL: getDuration("POSTING_CACHE_TTL", time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
