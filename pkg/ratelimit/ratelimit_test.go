package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientAllows(t *testing.T) {
	ctx := context.Background()
	l := New(nil, "catalog")

	locked, err := l.Locked(ctx, "admin", "login")
	require.NoError(t, err)
	assert.False(t, locked)

	ok, err := l.CheckAndSet(ctx, "admin", "login", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := l.TTL(ctx, "admin", "login")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	n, err := l.Hit(ctx, "admin", "login_failures", time.Second)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, l.Clear(ctx, "admin", "login"))
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	ok, err := l.CheckAndSet(context.Background(), "x", "y", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKey(t *testing.T) {
	l := New(nil, "catalog")
	assert.Equal(t, "catalog:rate_limit:admin:login", l.key("admin", "login"))
}

func newRedisLimiter(t *testing.T) (*miniredis.Miniredis, *Limiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb, "catalog")
}

func TestLockLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, l := newRedisLimiter(t)

	locked, err := l.Locked(ctx, "admin", "login")
	require.NoError(t, err)
	assert.False(t, locked)

	ok, err := l.CheckAndSet(ctx, "admin", "login", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.CheckAndSet(ctx, "admin", "login", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "lock already held")

	locked, err = l.Locked(ctx, "admin", "login")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.True(t, mr.Exists("catalog:rate_limit:admin:login"))

	ttl, err := l.TTL(ctx, "admin", "login")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ttl)

	locked, err = l.Locked(ctx, "user1", "login")
	require.NoError(t, err)
	assert.False(t, locked)

	mr.FastForward(11 * time.Second)
	locked, err = l.Locked(ctx, "admin", "login")
	require.NoError(t, err)
	assert.False(t, locked, "lock expired")

	_, err = l.CheckAndSet(ctx, "admin", "login", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Clear(ctx, "admin", "login"))
	assert.False(t, mr.Exists("catalog:rate_limit:admin:login"))
}

func TestHitCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	mr, l := newRedisLimiter(t)

	for want := int64(1); want <= 3; want++ {
		n, err := l.Hit(ctx, "admin", "login_failures", 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, 5*time.Second, mr.TTL("catalog:rate_limit:admin:login_failures"))

	mr.FastForward(6 * time.Second)
	n, err := l.Hit(ctx, "admin", "login_failures", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter restarts after the window")
}

func TestRedisErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	mr, l := newRedisLimiter(t)
	mr.Close()

	_, err := l.Locked(ctx, "admin", "login")
	assert.ErrorContains(t, err, "failed to check rate limit in redis")

	_, err = l.Hit(ctx, "admin", "login_failures", time.Second)
	assert.ErrorContains(t, err, "failed to count rate limit in redis")
}
