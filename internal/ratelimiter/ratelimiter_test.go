package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unlimited(t *testing.T) {
	limiter := New(0, 0)
	assert.True(t, limiter.Unlimited())

	for range 10_000 {
		require.True(t, limiter.Allow())
	}
}

func TestAllow_EnforcesBurst(t *testing.T) {
	limiter := New(10, 10)
	assert.False(t, limiter.Unlimited())

	for i := range 10 {
		assert.True(t, limiter.Allow(), "request %d is within the burst", i)
	}
	assert.False(t, limiter.Allow(), "burst exhausted")
}

func TestNew_BurstDefaultsToRate(t *testing.T) {
	limiter := New(5, 0)
	assert.InDelta(t, 5.0, limiter.Tokens(), 0.5)
}

func TestWait_Throttles(t *testing.T) {
	limiter := New(20, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWait_Canceled(t *testing.T) {
	limiter := New(1, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Wait(ctx))
}
