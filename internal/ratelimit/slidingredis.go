package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of counting one event against a limit.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// burstScript trims the window, records the event only when it fits and
// reports when the oldest retained event leaves the window. Scores are unix
// milliseconds.
var burstScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)
local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// CartBurst caps cart mutations per cashier over a rolling window kept in a
// Redis sorted set. Rejected events are not recorded, so retrying while
// throttled does not push the reset time out.
type CartBurst struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

// Allow counts one event for key.
func (b CartBurst) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	if b.Client == nil || limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: max(limit, 0), ResetAt: now.Add(window)}, nil
	}
	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}
	member := fmt.Sprintf("%s:%s", key, uuid.NewString())
	raw, err := burstScript.Run(ctx, b.Client, []string{b.Prefix + key}, now.UnixMilli(), windowMs, limit, member).Result()
	if err != nil {
		return Decision{Limit: limit, ResetAt: now.Add(window)}, err
	}
	vals, ok := raw.([]interface{})
	if !ok || len(vals) != 3 {
		return Decision{Limit: limit, ResetAt: now.Add(window)}, errors.New("ratelimit: unexpected script reply")
	}
	allowed, _ := vals[0].(int64)
	count, _ := vals[1].(int64)
	resetMs, _ := vals[2].(int64)

	return Decision{
		Allowed:   allowed == 1,
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
		ResetAt:   time.UnixMilli(resetMs),
	}, nil
}
