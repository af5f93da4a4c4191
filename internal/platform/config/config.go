package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "voto/pkg/platform/strings"
)

// Store backends selectable through VOTO_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	Store       string
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	Redis     RedisConfig
	Postgres  PostgresConfig
	SQLite    SQLiteConfig
	Log       LogConfig
	Auth      AuthConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

// RedisConfig configures the Redis record store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the PostgreSQL record store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SQLiteConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig configures the session tokens issued on successful RFC
// authentication.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration
}

// KafkaConfig configures the audit stream. Empty Brokers disables it and
// audit events go to the structured log instead.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// RateLimitConfig bounds RFC authentication attempts per caller and subject.
type RateLimitConfig struct {
	Disabled     bool
	AuthAttempts int
	AuthWindow   time.Duration
}

const defaultSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        envOr("VOTO_ADDR", ":8080"),
		Environment: envOr("ENVIRONMENT", "local"),
		Store:       strings.ToLower(envOr("VOTO_STORE", StoreMemory)),

		TrustProxyHeaders: os.Getenv("TRUST_PROXY_HEADERS") == "true",
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    intOr("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    intOr("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationOr("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		SQLite: SQLiteConfig{
			Path: envOr("SQLITE_PATH", "voto.db"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envOr("LOG_LEVEL", "info")),
			Format: strings.ToLower(envOr("LOG_FORMAT", "json")),
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey: envOr("JWT_SIGNING_KEY", defaultSigningKey),
			JWTIssuer:     envOr("JWT_ISSUER", "voto"),
			JWTAudience:   envOr("JWT_AUDIENCE", "voto-api"),
			TokenTTL:      durationOr("JWT_TTL", 15*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "voto.audit"),
		},
		RateLimit: RateLimitConfig{
			Disabled:     os.Getenv("DISABLE_RATE_LIMITING") == "true",
			AuthAttempts: intOr("RATE_LIMIT_AUTH_ATTEMPTS", 10),
			AuthWindow:   durationOr("RATE_LIMIT_AUTH_WINDOW", time.Minute),
		},
	}
}

// IsProduction reports whether the server runs in a production environment.
func (s Server) IsProduction() bool {
	return s.Environment == "production" || s.Environment == "prod"
}

// Validate rejects configurations the server cannot start with.
func (s Server) Validate() error {
	var errs []error
	switch s.Store {
	case StoreMemory:
	case StoreRedis:
		if s.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when VOTO_STORE=redis"))
		}
	case StorePostgres:
		if s.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when VOTO_STORE=postgres"))
		}
	case StoreSQLite:
		if s.SQLite.Path == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when VOTO_STORE=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VOTO_STORE %q", s.Store))
	}

	switch s.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", s.Log.Format))
	}
	if s.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if s.IsProduction() && s.Auth.JWTSigningKey == defaultSigningKey {
		errs = append(errs, errors.New("JWT_SIGNING_KEY must be set in production"))
	}
	if !s.RateLimit.Disabled && s.RateLimit.AuthWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_WINDOW must be positive"))
	}
	if len(s.Kafka.Brokers) > 0 && s.Kafka.AuditTopic == "" {
		errs = append(errs, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
