package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_ExclusiveUntilReleased(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	locker := NewLocalLocker()

	token, err := locker.AcquireOrderLock(ctx, "order-1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	second, err := locker.AcquireOrderLock(ctx, "order-1", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, second)

	other, err := locker.AcquireOrderLock(ctx, "order-2", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, other)

	// A stale token does not release the current holder.
	require.NoError(t, locker.ReleaseOrderLock(ctx, "order-1", "stale"))
	again, err := locker.AcquireOrderLock(ctx, "order-1", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, locker.ReleaseOrderLock(ctx, "order-1", token))
	again, err = locker.AcquireOrderLock(ctx, "order-1", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, again)
}

func TestLocalLocker_Expires(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	locker := NewLocalLocker()
	now := time.Now()
	locker.now = func() time.Time { return now }

	token, err := locker.AcquireOrderLock(ctx, "order-1", time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	now = now.Add(2 * time.Second)
	next, err := locker.AcquireOrderLock(ctx, "order-1", time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, next)
	assert.NotEqual(t, token, next)

	// The expired holder cannot release the new lock.
	require.NoError(t, locker.ReleaseOrderLock(ctx, "order-1", token))
	held, err := locker.AcquireOrderLock(ctx, "order-1", time.Second)
	require.NoError(t, err)
	assert.Empty(t, held)
}
