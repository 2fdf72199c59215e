package config

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from cfg and pings it with a
// short timeout.  It returns nil when the server is unreachable; callers
// degrade by disabling caching and rate limiting.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Address(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConfig(cfg),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// tlsConfig returns nil when TLS is off.  Certificates are verified unless
// REDIS_TLS_INSECURE is set.
func tlsConfig(cfg RedisConfig) *tls.Config {
	if !cfg.TLS {
		return nil
	}
	host, _, err := net.SplitHostPort(cfg.Address())
	if err != nil {
		host = cfg.Address()
	}
	return &tls.Config{
		ServerName:         host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.TLSInsecure,
	}
}
