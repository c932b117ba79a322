package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyLoginAttempts counts login attempts per normalized email: login:attempts:{email}
const keyLoginAttempts = "login:attempts:%s"

// Limiter is a fixed-window attempt counter backed by Redis.
type Limiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

// NewClient opens a Redis client for the given address.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
}

// New builds a limiter allowing max attempts per window.
func New(rdb *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, max: max, window: window}
}

// Allow registers one attempt for key and reports whether it is within budget.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf(keyLoginAttempts, normalize(key))

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return true, fmt.Errorf("ratelimit: incr: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return true, fmt.Errorf("ratelimit: expire: %w", err)
		}
	}
	return n <= int64(l.max), nil
}

// Reset clears the counter, called after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, fmt.Sprintf(keyLoginAttempts, normalize(key))).Err()
}

// Ping reports whether Redis is reachable.
func (l *Limiter) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Noop never limits. Used when REDIS_ADDR is not configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) { return true, nil }
func (Noop) Reset(context.Context, string) error         { return nil }
func (Noop) Ping(context.Context) error                  { return nil }
