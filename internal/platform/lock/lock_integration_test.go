//go:build integration

package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"archivist/internal/platform/lock"
	"archivist/pkg/testutil/containers"
)

// LockerSuite runs the same lease contract against every shared backend.
type LockerSuite struct {
	suite.Suite
	newLocker func() lock.Locker
	reset     func(ctx context.Context) error
}

func TestPostgresLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &LockerSuite{
		newLocker: func() lock.Locker { return lock.NewPostgres(pg.DB) },
		reset:     func(context.Context) error { return nil },
	})
}

func TestRedisLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	suite.Run(t, &LockerSuite{
		newLocker: func() lock.Locker { return lock.NewRedis(rc.Client, time.Minute) },
		reset:     rc.Flush,
	})
}

func TestRedisLeaseOutlivesTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.Flush(ctx))

	first := lock.NewRedis(rc.Client, 300*time.Millisecond)
	second := lock.NewRedis(rc.Client, 300*time.Millisecond)

	lease, err := first.TryLock(ctx, "archivist:retention-run")
	require.NoError(t, err)

	// A run that lasts several TTLs still holds the lease.
	time.Sleep(time.Second)
	_, err = second.TryLock(ctx, "archivist:retention-run")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx), "release is idempotent")

	again, err := second.TryLock(ctx, "archivist:retention-run")
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func (s *LockerSuite) SetupTest() {
	s.Require().NoError(s.reset(context.Background()))
}

func (s *LockerSuite) TestSecondInstanceIsRefused() {
	ctx := context.Background()
	first, second := s.newLocker(), s.newLocker()

	lease, err := first.TryLock(ctx, "archivist:retention-run")
	s.Require().NoError(err)

	_, err = second.TryLock(ctx, "archivist:retention-run")
	s.ErrorIs(err, lock.ErrNotAcquired)

	s.Require().NoError(lease.Release(ctx))

	again, err := second.TryLock(ctx, "archivist:retention-run")
	s.Require().NoError(err, "a released lease can be taken by another instance")
	s.NoError(again.Release(ctx))
}

func (s *LockerSuite) TestNamesAreIndependent() {
	ctx := context.Background()
	locker := s.newLocker()

	a, err := locker.TryLock(ctx, "archivist:retention-run")
	s.Require().NoError(err)
	defer a.Release(ctx)

	b, err := locker.TryLock(ctx, "archivist:outbox-relay")
	s.Require().NoError(err)
	s.NoError(b.Release(ctx))
}
