package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter holds short lived locks in redis. A nil client allows everything.
type Limiter struct {
	rdb    redis.UniversalClient
	prefix string
}

func New(rdb redis.UniversalClient, prefix string) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix}
}

func (l *Limiter) key(subject, action string) string {
	return fmt.Sprintf("%s:rate_limit:%s:%s", l.prefix, subject, action)
}

// Locked reports whether subject is currently locked out of action.
func (l *Limiter) Locked(ctx context.Context, subject, action string) (bool, error) {
	if l == nil || l.rdb == nil {
		return false, nil
	}
	n, err := l.rdb.Exists(ctx, l.key(subject, action)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return n > 0, nil
}

// CheckAndSet acquires the lock for the window. It returns false when the lock was already held.
func (l *Limiter) CheckAndSet(ctx context.Context, subject, action string, window time.Duration) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, l.key(subject, action), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func (l *Limiter) TTL(ctx context.Context, subject, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, l.key(subject, action)).Result()
}

func (l *Limiter) Clear(ctx context.Context, subject, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, l.key(subject, action)).Err()
}

// Hit counts one event for subject and action. The counter expires window after the first hit.
func (l *Limiter) Hit(ctx context.Context, subject, action string, window time.Duration) (int64, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}

	key := l.key(subject, action)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count rate limit in redis: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return n, fmt.Errorf("failed to expire rate limit in redis: %w", err)
		}
	}
	return n, nil
}
