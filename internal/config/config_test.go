package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "tickets")
	t.Setenv("DB_NAME", "tickets")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, 43830*time.Hour, cfg.ReservationHorizon)
	assert.Equal(t, 24*time.Hour, cfg.AccessTTL)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Cache.MethodSet())
	assert.Equal(t, 60, cfg.RateLimit.Capacity)
	assert.Equal(t, 10, cfg.RateLimit.WriteCapacity)
	assert.Equal(t, 6*time.Second, cfg.RateLimit.WriteRefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.False(t, cfg.Queue.Enabled)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "tickets")
	t.Setenv("DB_NAME", "tickets")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RESERVATION_HORIZON", "8760h")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_WRITE_CAPACITY", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8760*time.Hour, cfg.ReservationHorizon)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Cache.MethodSet())
	assert.Equal(t, "cache:6380", cfg.Redis.Address())
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
	assert.Equal(t, 1, cfg.RateLimit.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.TTL)
	assert.Equal(t, 0, cfg.RateLimit.WriteCapacity)
}

func TestRedisTLSConfig(t *testing.T) {
	assert.Nil(t, tlsConfig(RedisConfig{Addr: "cache:6379"}))

	conf := tlsConfig(RedisConfig{Addr: "cache:6379", TLS: true})
	require.NotNil(t, conf)
	assert.False(t, conf.InsecureSkipVerify)
	assert.Equal(t, "cache", conf.ServerName)

	conf = tlsConfig(RedisConfig{Host: "redis.internal", Port: "6380", TLS: true, TLSInsecure: true})
	require.NotNil(t, conf)
	assert.True(t, conf.InsecureSkipVerify)
	assert.Equal(t, "redis.internal", conf.ServerName)
}

func TestLoadRedisTLSVerifiesByDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_TLS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.TLS)
	assert.False(t, cfg.Redis.TLSInsecure)
}
