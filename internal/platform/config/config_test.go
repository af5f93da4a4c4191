package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"VOTO_ADDR", "VOTO_STORE", "REDIS_URL", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT", "JWT_TTL", "KAFKA_BROKERS", "ENVIRONMENT", "DISABLE_RATE_LIMITING", "RATE_LIMIT_AUTH_ATTEMPTS", "TRUST_PROXY_HEADERS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Equal(t, 10, cfg.RateLimit.AuthAttempts)
	assert.False(t, cfg.TrustProxyHeaders)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VOTO_ADDR", ":9090")
	t.Setenv("VOTO_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "32")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg := FromEnv()

	assert.True(t, cfg.TrustProxyHeaders)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_POOL_SIZE", "lots")
	t.Setenv("JWT_TTL", "soon")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	base := func() Server {
		return Server{
			Store:     StoreMemory,
			Log:       LogConfig{Level: "info", Format: "json"},
			Auth:      AuthConfig{JWTSigningKey: "k", TokenTTL: time.Minute},
			Kafka:     KafkaConfig{AuditTopic: "voto.audit"},
			RateLimit: RateLimitConfig{AuthAttempts: 10, AuthWindow: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Server)
		wantErr string
	}{
		{"memory is valid", func(*Server) {}, ""},
		{"redis without url", func(s *Server) { s.Store = StoreRedis }, "REDIS_URL"},
		{"postgres without url", func(s *Server) { s.Store = StorePostgres }, "DATABASE_URL"},
		{"sqlite without path", func(s *Server) { s.Store = StoreSQLite }, "SQLITE_PATH"},
		{"unknown store", func(s *Server) { s.Store = "etcd" }, "unknown VOTO_STORE"},
		{"unknown log format", func(s *Server) { s.Log.Format = "xml" }, "LOG_FORMAT"},
		{"non-positive ttl", func(s *Server) { s.Auth.TokenTTL = 0 }, "JWT_TTL"},
		{"default key in production", func(s *Server) {
			s.Environment = "production"
			s.Auth.JWTSigningKey = defaultSigningKey
		}, "JWT_SIGNING_KEY"},
		{"zero rate limit window", func(s *Server) { s.RateLimit.AuthWindow = 0 }, "RATE_LIMIT_AUTH_WINDOW"},
		{"zero window is fine when disabled", func(s *Server) {
			s.RateLimit.Disabled = true
			s.RateLimit.AuthWindow = 0
		}, ""},
		{"brokers without topic", func(s *Server) {
			s.Kafka.Brokers = []string{"k1:9092"}
			s.Kafka.AuditTopic = ""
		}, "KAFKA_AUDIT_TOPIC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
