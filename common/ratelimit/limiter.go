// Package ratelimit provides fixed-window request limiting backed by
// Redis + Lua. It protects the gateway's expensive flows (oracle calls,
// storage round-trips, AEAD work) from abuse; it never stores key
// material or entitlement results.
package ratelimit

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/justicantus/mediagate/common/logger"
)

//go:embed rate_limit.lua
var rateLimitScript string

// Result contains the outcome of a rate limit check
type Result struct {
	Allowed           bool  // Whether the request is allowed
	CurrentCount      int64 // Current count in the window
	Limit             int64 // The limit that was checked
	RetryAfterSeconds int64 // Seconds until the limit resets (0 if allowed)
}

// Limiter runs atomic fixed-window checks via an embedded Lua script
type Limiter struct {
	redis  *redis.Client
	script *redis.Script
	window int
	log    *logger.Logger
}

// New creates a limiter with the given window in seconds
func New(redisClient *redis.Client, windowSeconds int, log *logger.Logger) *Limiter {
	return &Limiter{
		redis:  redisClient,
		script: redis.NewScript(rateLimitScript),
		window: windowSeconds,
		log:    log,
	}
}

// CheckGlobal checks the service-wide limit
func (l *Limiter) CheckGlobal(ctx context.Context, limit int64) (*Result, error) {
	return l.check(ctx, "rate_limit:global", limit)
}

// CheckAccount checks the limit for a single requesting account
func (l *Limiter) CheckAccount(ctx context.Context, account string, limit int64) (*Result, error) {
	return l.check(ctx, fmt.Sprintf("rate_limit:account:%s", account), limit)
}

func (l *Limiter) check(ctx context.Context, key string, limit int64) (*Result, error) {
	result, err := l.script.Run(ctx, l.redis, []string{key}, limit, l.window).Result()
	if err != nil {
		l.log.Error("rate limit check failed", "key", key, "error", err)
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	// Parse result array: {allowed, current_count, limit, retry_after}
	values, ok := result.([]interface{})
	if !ok || len(values) != 4 {
		return nil, fmt.Errorf("unexpected script result format")
	}

	return &Result{
		Allowed:           values[0].(int64) == 1,
		CurrentCount:      values[1].(int64),
		Limit:             values[2].(int64),
		RetryAfterSeconds: values[3].(int64),
	}, nil
}
