package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/mimo")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mimo", cfg.AppPrefix)
	assert.Equal(t, 10*time.Second, cfg.SyncTimeout)
	assert.Equal(t, 720*time.Hour, cfg.RewardTTL)
	assert.Equal(t, "brl", cfg.Stripe.Currency)
	assert.False(t, cfg.S3Enabled())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/mimo")
	t.Setenv("AUTH_OIDC_ISSUER", "https://auth.example.com")
	t.Setenv("SYNC_TIMEOUT", "2s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_ENDPOINT", "minio:9000")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.SyncTimeout)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.S3Enabled())
}

func TestValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{DBURL: "x"}.Validate())
	assert.NoError(t, Config{DBURL: "x", Auth: AuthConfig{JWTSecret: "s"}}.Validate())
}
