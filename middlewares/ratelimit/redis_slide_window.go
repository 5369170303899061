package ratelimit

import (
	"context"
	_ "embed"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed slide_window.lua
var luaSlideWindow string

// RedisSlidingWindowLimiter counts requests per key in a Redis sorted set
// over a sliding window. The check-and-record step runs as a single Lua
// script, so it stays atomic under concurrent clients.
type RedisSlidingWindowLimiter struct {
	Cmd      redis.Cmdable
	Interval time.Duration
	Rate     int
}

// InitRedisSlidingWindowLimiter builds a limiter allowing rate requests per
// interval for each key.
func InitRedisSlidingWindowLimiter(cmd redis.Cmdable, interval time.Duration, rate int) *RedisSlidingWindowLimiter {
	return &RedisSlidingWindowLimiter{Cmd: cmd, Interval: interval, Rate: rate}
}

// Limit reports true when the key is over its allowance for the current
// window.
func (r *RedisSlidingWindowLimiter) Limit(ctx context.Context, key string) (bool, error) {
	return r.Cmd.Eval(ctx, luaSlideWindow, []string{key},
		r.Interval.Milliseconds(), r.Rate, time.Now().UnixMilli()).Bool()
}
