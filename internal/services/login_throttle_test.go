package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/voicegate/internal/infrastructure/database"
)

func setupThrottle(t *testing.T, maxAttempts int) (*miniredis.Miniredis, *RedisLoginThrottle) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })

	client := database.NewRedis(mr.Addr(), "", 0)
	return mr, NewLoginThrottle(client, maxAttempts, 15*time.Minute).(*RedisLoginThrottle)
}

func TestLoginThrottle_AllowsUnderLimit(t *testing.T) {
	_, throttle := setupThrottle(t, 3)
	ctx := context.Background()

	allowed, err := throttle.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, allowed, "no recorded failures means allowed")

	require.NoError(t, throttle.RecordFailure(ctx, "a@x.com"))
	require.NoError(t, throttle.RecordFailure(ctx, "a@x.com"))

	allowed, err = throttle.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoginThrottle_BlocksAtLimit(t *testing.T) {
	_, throttle := setupThrottle(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, throttle.RecordFailure(ctx, "a@x.com"))
	}

	allowed, err := throttle.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other accounts are unaffected.
	allowed, err = throttle.Allow(ctx, "b@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoginThrottle_ResetClearsCounter(t *testing.T) {
	_, throttle := setupThrottle(t, 1)
	ctx := context.Background()

	require.NoError(t, throttle.RecordFailure(ctx, "a@x.com"))

	allowed, err := throttle.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, throttle.Reset(ctx, "a@x.com"))

	allowed, err = throttle.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	mr, throttle := setupThrottle(t, 1)
	ctx := context.Background()

	require.NoError(t, throttle.RecordFailure(ctx, "a@x.com"))
	mr.FastForward(16 * time.Minute)

	allowed, err := throttle.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, allowed, "the counter expires with its window")
}
