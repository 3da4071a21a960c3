package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SERVER_PORT", "8088")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSize)
	assert.False(t, cfg.Redis.Enabled())
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
