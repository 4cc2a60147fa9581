package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "CORS_ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT",
		"JWT_SECRET", "JWT_ACCESS_TTL", "JWT_REFRESH_TTL",
		"LOG_LEVEL", "LOG_FORMAT", "STORAGE",
		"DATABASE_URL", "PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("PGUSER", "app")
	t.Setenv("PGDATABASE", "events")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StoragePostgres, cfg.Storage)

	dsn, err := cfg.Postgres.URL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@localhost:5432/events?sslmode=disable", dsn)
}

func TestFromEnvInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_REFRESH_TTL", "forever")
	_, err := FromEnv()
	assert.True(t, errors.Is(err, ErrMisconfigured))

	clearEnv(t)
	t.Setenv("STORAGE", "mongo")
	_, err = FromEnv()
	assert.True(t, errors.Is(err, ErrMisconfigured))
}

func TestPostgresURLRequiresSettings(t *testing.T) {
	_, err := PostgresConfig{}.URL()
	assert.ErrorIs(t, err, ErrMisconfigured)

	dsn, err := PostgresConfig{DatabaseURL: "postgres://x/y"}.URL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://x/y", dsn)
}
