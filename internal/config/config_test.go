package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	for _, key := range []string{
		"APP_ENV", "PROD_ORIGINS", "HTTP_ADDR", "JWT_ACCESS_TOKEN_TTL", "BCRYPT_COST",
		"BOOKING_COMMIT_DELAY", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 500*time.Millisecond, cfg.CommitDelay)
	assert.Equal(t, 200, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.RedisURL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROD_ORIGINS", "https://driverlink.app")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "1h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("BOOKING_COMMIT_DELAY", "0s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "https://driverlink.app", cfg.ProdOrigins)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Zero(t, cfg.CommitDelay)
	assert.Zero(t, cfg.RateLimitPerMinute)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"bad ttl", map[string]string{"JWT_ACCESS_TOKEN_TTL": "soon"}},
		{"bad cost", map[string]string{"BCRYPT_COST": "high"}},
		{"bad delay", map[string]string{"BOOKING_COMMIT_DELAY": "500"}},
		{"negative delay", map[string]string{"BOOKING_COMMIT_DELAY": "-1s"}},
		{"negative rate", map[string]string{"RATE_LIMIT_PER_MINUTE": "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
