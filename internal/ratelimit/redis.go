package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter enforces the attempt limit globally across instances using
// a sorted set of failure timestamps per key.
type RedisLimiter struct {
	rdb *redis.Client
}

// NewRedisLimiter creates a Redis-backed attempt limiter
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

func limiterKey(key string) string {
	return fmt.Sprintf("ratelimit:pin:%s", key)
}

// TooManyRecent reports whether the key has Limit failures inside the window
func (l *RedisLimiter) TooManyRecent(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	threshold := now.Add(-Window)

	rkey := limiterKey(key)
	if err := l.rdb.ZRemRangeByScore(ctx, rkey, "0", fmt.Sprintf("%d", threshold.UnixNano())).Err(); err != nil {
		return false, fmt.Errorf("failed to prune attempts: %w", err)
	}

	count, err := l.rdb.ZCard(ctx, rkey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count >= Limit, nil
}

// AddFailure records one failed attempt for the key
func (l *RedisLimiter) AddFailure(ctx context.Context, key string) error {
	now := time.Now()
	rkey := limiterKey(key)

	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, rkey, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, rkey, Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Reset clears the key
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, limiterKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}
