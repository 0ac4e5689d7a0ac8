package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// admitScript prunes, counts, and conditionally records in one atomic step.
// Scores are unix milliseconds; members are unix nanoseconds for
// uniqueness. Entries at or before the window start are removed before
// counting, matching the in-memory limiter's strict staleness comparison.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now_ms = tonumber(ARGV[2])
local member = ARGV[3]
local max = tonumber(ARGV[4])
local ttl_sec = tonumber(ARGV[5])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
if redis.call('ZCARD', key) >= max then
	return 0
end
redis.call('ZADD', key, now_ms, member)
redis.call('EXPIRE', key, ttl_sec)
return 1
`)

// RedisWindow is a sliding window whose state lives in a Redis sorted set,
// giving a shared view across process instances. Any Redis failure admits
// the request: availability takes precedence over strict enforcement when
// the limiter itself degrades.
type RedisWindow struct {
	rdb         *redis.Client
	maxRequests int
	window      time.Duration
	log         zerolog.Logger
}

// NewRedisWindow creates a limiter backed by the given client.
func NewRedisWindow(rdb *redis.Client, maxRequests int, window time.Duration, log zerolog.Logger) *RedisWindow {
	return &RedisWindow{rdb: rdb, maxRequests: maxRequests, window: window, log: log}
}

// Admit runs the window check atomically in Redis, failing open on error.
func (r *RedisWindow) Admit(ctx context.Context, key string) bool {
	now := time.Now()
	windowStart := now.Add(-r.window).UnixMilli()
	ttlSec := int(r.window/time.Second) + 1

	res, err := admitScript.Run(ctx, r.rdb,
		[]string{"ratelimit:" + key},
		windowStart,
		now.UnixMilli(),
		strconv.FormatInt(now.UnixNano(), 10),
		r.maxRequests,
		ttlSec,
	).Int64()
	if err != nil {
		r.log.Warn().Err(err).Str("client", key).Msg("rate limit store unavailable, admitting request")
		return true
	}
	return res == 1
}
