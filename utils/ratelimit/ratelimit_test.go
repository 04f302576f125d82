package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisLimiter_Allow(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.1"
	limit := 5
	window := time.Minute

	for i := range limit {
		allowed, err := limiter.Allow(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.False(t, allowed, "request over the limit should be denied")
}

func TestRedisLimiter_WindowExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.2"
	window := 10 * time.Second

	allowed, err := limiter.Allow(ctx, key, 1, window)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, key, 1, window)
	require.NoError(t, err)
	require.False(t, allowed)

	// Advance past the window; the counter resets.
	mr.FastForward(window + time.Second)

	allowed, err = limiter.Allow(ctx, key, 1, window)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_AllowN(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.3"

	allowed, err := limiter.AllowN(ctx, key, 4, 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.AllowN(ctx, key, 4, 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisLimiter_Reset(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.4"

	allowed, err := limiter.Allow(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, limiter.Reset(ctx, key))

	allowed, err = limiter.Allow(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_GetRemaining(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.5"
	limit := 5

	remaining, err := limiter.GetRemaining(ctx, key, limit, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, limit, remaining)

	_, err = limiter.AllowN(ctx, key, 3, limit, time.Minute)
	require.NoError(t, err)

	remaining, err = limiter.GetRemaining(ctx, key, limit, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestRedisLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	fallbackLimiter := NewRedisLimiter(client, zap.NewNop(), true)
	allowed, err := fallbackLimiter.Allow(context.Background(), "ip:10.0.0.6", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed, "fail-open limiter should allow when redis is down")

	strictLimiter := NewRedisLimiter(client, zap.NewNop(), false)
	_, err = strictLimiter.Allow(context.Background(), "ip:10.0.0.6", 1, time.Minute)
	assert.Error(t, err, "strict limiter should surface redis errors")
}
