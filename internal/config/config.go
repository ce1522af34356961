package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
// There is no ambient global state: main loads this once and passes it to
// constructors.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	DBConnLifetime time.Duration
	DBConnIdleTime time.Duration
	MigrationsPath string

	// Redis preference cache (optional; empty URL disables it)
	RedisURL     string
	PrefCacheTTL time.Duration

	// SMS gateway
	SMSGatewayURL string
	SMSUsername   string
	SMSAPIKey     string
	SMSSenderID   string

	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Push gateway (optional; empty URL degrades push to a no-op)
	PushGatewayURL string
	PushAPIKey     string

	// Shared provider call timeout (connect + read)
	ProviderTimeout time.Duration

	// Retry policy
	MaxRetryAttempts int
	RetryBatchSize   int
	RetryInterval    time.Duration
	BaseRetryDelay   time.Duration

	// Worker pools: primary handles fresh sends, retry handles resubmissions
	PoolWorkers        int
	PoolQueueSize      int
	RetryPoolWorkers   int
	RetryPoolQueueSize int

	// Rate limiting: maximum provider calls per second per channel
	RateLimit int

	// Phone normalization
	DefaultCountryCode string
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL:    dbURL,
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 5)),
		DBConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
		DBConnIdleTime: getDuration("DB_CONN_IDLE_TIME", 30*time.Minute),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		RedisURL:     os.Getenv("REDIS_URL"),
		PrefCacheTTL: getDuration("PREF_CACHE_TTL", 5*time.Minute),

		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", "https://api.sandbox.africastalking.com/version1/messaging"),
		SMSUsername:   os.Getenv("SMS_USERNAME"),
		SMSAPIKey:     os.Getenv("SMS_API_KEY"),
		SMSSenderID:   getEnv("SMS_SENDER_ID", "KAZICONNECT"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		PushGatewayURL: os.Getenv("PUSH_GATEWAY_URL"),
		PushAPIKey:     os.Getenv("PUSH_API_KEY"),

		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 10*time.Second),

		MaxRetryAttempts: getInt("MAX_RETRY_ATTEMPTS", 3),
		RetryBatchSize:   getInt("RETRY_BATCH_SIZE", 100),
		RetryInterval:    getDuration("RETRY_INTERVAL", 5*time.Minute),
		BaseRetryDelay:   getDuration("BASE_RETRY_DELAY", 5*time.Minute),

		PoolWorkers:        getInt("POOL_WORKERS", 10),
		PoolQueueSize:      getInt("POOL_QUEUE_SIZE", 100),
		RetryPoolWorkers:   getInt("RETRY_POOL_WORKERS", 2),
		RetryPoolQueueSize: getInt("RETRY_POOL_QUEUE_SIZE", 50),

		RateLimit: getInt("RATE_LIMIT_PER_CHANNEL", 100),

		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+256"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
