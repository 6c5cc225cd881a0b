package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "ALLOWED_ORIGINS", "DATABASE_URL", "PG_HOST", "REDIS_ENABLED", "WS_OUTBOX_SIZE"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, logrus.InfoLevel, c.LogLevel)
	assert.Equal(t, []string{"localhost:*", "127.0.0.1:*"}, c.AllowedOrigins)
	assert.False(t, c.DatabaseEnabled)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, 64, c.OutboxSize)
	assert.Equal(t, 500*time.Millisecond, c.HistorianFlush)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("PG_DATABASE", "sweeper")
	t.Setenv("PG_PORT", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("WS_OUTBOX_SIZE", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " example.com , ,*.example.com")

	c := Load()
	assert.True(t, c.DatabaseEnabled)
	assert.Equal(t, "postgres://u:p@db:5432/sweeper", c.DatabaseURL)
	assert.Equal(t, logrus.DebugLevel, c.LogLevel)
	assert.False(t, c.RedisEnabled)
	assert.Equal(t, 64, c.OutboxSize)
	assert.Equal(t, []string{"example.com", "*.example.com"}, c.AllowedOrigins)
}
