package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local expiry = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
redis.call('ZADD', key, now, now)
redis.call('EXPIRE', key, expiry)

local remaining = math.max(limit - count - 1, 0)
local allowed = count < limit

return {allowed and 1 or 0, remaining}
`

const checkBlockScript = `
local exists = redis.call('EXISTS', KEYS[1])
if exists == 0 then
    return {0, 0}
end
return {1, redis.call('TTL', KEYS[1])}
`

var (
	slidingWindow = redis.NewScript(slidingWindowScript)
	checkBlock    = redis.NewScript(checkBlockScript)
)

// RedisLimiter is a sliding-window limiter shared by every instance. A key
// that exceeds the window is blocked for BlockDuration.
type RedisLimiter struct {
	client *redis.Client
	name   string
	cfg    WindowConfig
}

func NewRedisLimiter(client *redis.Client, name string, cfg WindowConfig) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		name:   name,
		cfg:    cfg,
	}
}

func (l *RedisLimiter) windowKey(key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.name, key)
}

func (l *RedisLimiter) blockKey(key string) string {
	return fmt.Sprintf("ratelimit:block:%s:%s", l.name, key)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	blocked, err := checkBlock.Run(ctx, l.client, []string{l.blockKey(key)}).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to check block: %w", err)
	}
	if isBlocked, ttl := parsePair(blocked); isBlocked == 1 {
		return Decision{
			Limit:      l.cfg.RequestsPerWindow,
			RetryAfter: time.Duration(ttl) * time.Second,
		}, nil
	}

	now := time.Now()
	res, err := slidingWindow.Run(ctx, l.client, []string{l.windowKey(key)},
		now.UnixNano(),
		l.cfg.Window.Nanoseconds(),
		l.cfg.RequestsPerWindow,
		int(l.cfg.Window.Seconds())+60,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed, remaining := parsePair(res)
	d := Decision{
		Allowed:   allowed == 1,
		Limit:     l.cfg.RequestsPerWindow,
		Remaining: int(remaining),
	}
	if d.Allowed {
		return d, nil
	}

	if err := l.client.Set(ctx, l.blockKey(key), "1", l.cfg.BlockDuration).Err(); err != nil {
		return d, fmt.Errorf("failed to block %s: %w", key, err)
	}
	d.RetryAfter = l.cfg.BlockDuration
	return d, nil
}

func parsePair(values []int64) (int64, int64) {
	if len(values) < 2 {
		return 0, 0
	}
	return values[0], values[1]
}
