package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticket-reservation/internal/config"
)

// takeToken refills a bucket hash for the whole intervals elapsed since its
// last refill, then tries to take one token.
// KEYS[1] bucket; ARGV now_ms, capacity, refill, interval_ms, ttl_s.
// Returns {taken (0|1), tokens left, ms until the next refill when refused}.
var takeToken = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])

local tokens = capacity
local stamp = now
local saved = redis.call('HMGET', KEYS[1], 'tokens', 'stamp')
if saved[1] and saved[2] then
	tokens = tonumber(saved[1])
	stamp = tonumber(saved[2])
end

local steps = math.floor(math.max(0, now - stamp) / interval)
if steps > 0 then
	tokens = math.min(capacity, tokens + steps * refill)
	stamp = stamp + steps * interval
end

local taken = 0
local wait = 0
if tokens >= 1 then
	taken = 1
	tokens = tokens - 1
else
	wait = math.max(0, stamp + interval - now)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {taken, tokens, wait}
`)

// bucket is one token bucket shape.
type bucket struct {
	capacity int
	refill   int
	interval time.Duration
}

// NewTokenBucket limits requests with token buckets kept in Redis.  Reservation
// writes are charged to a per-user write bucket when one is configured;
// every other request uses the general bucket keyed by the configured
// strategy.  Redis failures let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	general := bucket{capacity: cfg.Capacity, refill: cfg.RefillTokens, interval: cfg.RefillInterval}
	writes := bucket{capacity: cfg.WriteCapacity, refill: 1, interval: cfg.WriteRefillInterval}
	ttl := int64(math.Ceil(cfg.TTL.Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b, key := general, rateKey(cfg, c)
			if writes.capacity > 0 && isReservationWrite(c) {
				b, key = writes, cfg.Prefix+":reservation-write:user:"+currentUserID(c)
			}

			res, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), b.capacity, b.refill, b.interval.Milliseconds(), ttl).Int64Slice()
			if err != nil || len(res) != 3 {
				log.Warn("ratelimit: bucket unavailable", "key", key, "err", err, "result", fmt.Sprint(res))
				return next(c)
			}
			taken, left, waitMs := res[0] == 1, res[1], res[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(b.capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if taken {
				return next(c)
			}

			h.Set("Retry-After", strconv.FormatInt((waitMs+999)/1000, 10))
			log.Debug("ratelimit: refused", "key", key, "retry_ms", waitMs)
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "rate limit exceeded"})
		}
	}
}

// isReservationWrite reports a mutating request on the reservations
// resource.
func isReservationWrite(c echo.Context) bool {
	switch c.Request().Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	path := c.Path()
	if path == "" {
		path = c.Request().URL.Path
	}
	return strings.HasPrefix(path, "/v1/reservations")
}

// rateKeyParts lists, per key strategy, which request attributes identify
// a bucket.  Unknown strategies fall back to ip_user_route.
var rateKeyParts = map[string][]string{
	"ip":            {"ip"},
	"user":          {"user"},
	"route":         {"route"},
	"ip_user":       {"ip", "user"},
	"ip_route":      {"ip", "route"},
	"user_route":    {"user", "route"},
	"ip_user_route": {"ip", "user", "route"},
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts, ok := rateKeyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		parts = rateKeyParts["ip_user_route"]
	}
	out := []string{cfg.Prefix}
	for _, p := range parts {
		out = append(out, p, rateKeyValue(c, p))
	}
	return strings.Join(out, ":")
}

func rateKeyValue(c echo.Context, part string) string {
	switch part {
	case "ip":
		if ip := c.RealIP(); ip != "" {
			return ip
		}
		return "unknown"
	case "user":
		return currentUserID(c)
	default:
		return c.Request().Method + " " + c.Path()
	}
}

// currentUserID returns the authenticated user id set by Authenticate, or
// "anon" on public routes.
func currentUserID(c echo.Context) string {
	if id, ok := c.Get(UserIDKey).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
