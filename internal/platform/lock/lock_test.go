package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	locker := NewMemory()

	lease, err := locker.TryLock(ctx, "retention")
	require.NoError(t, err)

	_, err = locker.TryLock(ctx, "retention")
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := locker.TryLock(ctx, "outbox")
	require.NoError(t, err, "names are independent")
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx), "release is idempotent")

	again, err := locker.TryLock(ctx, "retention")
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestMemory_SingleWinner(t *testing.T) {
	ctx := context.Background()
	locker := NewMemory()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := locker.TryLock(ctx, "retention"); err == nil {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}

func TestAdvisoryKey(t *testing.T) {
	assert.Equal(t, AdvisoryKey("retention"), AdvisoryKey("retention"))
	assert.NotEqual(t, AdvisoryKey("retention"), AdvisoryKey("outbox"))
}
