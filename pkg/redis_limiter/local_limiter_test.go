package redis_limiter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLimiter(2)

	require.NoError(t, l.Acquire(ctx, "u1"))
	require.NoError(t, l.Acquire(ctx, "u1"))
	assert.ErrorIs(t, l.Acquire(ctx, "u1"), ErrLimitReached)
	assert.NoError(t, l.Acquire(ctx, "u2"), "keys are independent")

	l.Release(ctx, "u1")
	n, _ := l.GetCurrent(ctx, "u1")
	assert.Equal(t, 1, n)
	assert.NoError(t, l.Acquire(ctx, "u1"))

	l.Release(ctx, "u1")
	l.Release(ctx, "u1")
	l.Release(ctx, "u1")
	n, _ = l.GetCurrent(ctx, "u1")
	assert.Equal(t, 0, n, "extra releases do not go negative")
}

func TestLocalLimiter_Unlimited(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Acquire(ctx, "u"))
	}
}

var (
	_ Limiter = (*LocalLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)
