// Package ratelimit implements a fixed window request limiter on redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidConfig = errors.New("ratelimit: max and window must be positive")

// Result describes the state of a key after one hit.
type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// increments the counter and arms the expiry on the first hit of a window.
var hit = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

type FixedWindow struct {
	client redis.UniversalClient
	prefix string
	max    int64
	window time.Duration
}

func NewFixedWindow(client redis.UniversalClient, maxHits int64, window time.Duration) (*FixedWindow, error) {
	if maxHits < 1 || window <= 0 {
		return nil, ErrInvalidConfig
	}
	return &FixedWindow{client: client, prefix: "ratelimit:", max: maxHits, window: window}, nil
}

func (f *FixedWindow) Allow(ctx context.Context, key string) (Result, error) {
	vals, err := hit.Run(ctx, f.client, []string{f.prefix + key}, f.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: hit %q: %w", key, err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("ratelimit: unexpected reply %v", vals)
	}

	count, ttl := vals[0], time.Duration(vals[1])*time.Millisecond

	res := Result{Limit: f.max, Remaining: max(f.max-count, 0)}
	if count <= f.max {
		res.Allowed = true
		return res, nil
	}

	res.RetryAfter = ttl
	return res, nil
}
