package retention

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archivist/internal/platform/config"
	"archivist/internal/platform/lock"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/requestcontext"
)

// blockingRunner holds every run until release is closed.
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
	actors  chan string
	err     error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		actors:  make(chan string, 16),
	}
}

func (b *blockingRunner) Run(ctx context.Context, today time.Time) (*RunReport, error) {
	b.calls.Add(1)
	b.actors <- requestcontext.Actor(ctx)
	b.started <- struct{}{}
	<-b.release
	if b.err != nil {
		return nil, b.err
	}
	return &RunReport{Today: today}, nil
}

func TestRunNowRejectsOverlap(t *testing.T) {
	runner := newBlockingRunner()
	s := NewScheduler(runner, lock.NewMemory())

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), date(2024, 5, 1))
		done <- err
	}()
	<-runner.started

	_, err := s.RunNow(context.Background(), date(2024, 5, 1))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	close(runner.release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, runner.calls.Load())

	report, err := s.RunNow(context.Background(), date(2024, 5, 2))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 5, 2), report.Today)
}

func TestRunNowRespectsSharedLease(t *testing.T) {
	locker := lock.NewMemory()
	held, err := locker.TryLock(context.Background(), LockName)
	require.NoError(t, err)

	runner := newBlockingRunner()
	close(runner.release)
	s := NewScheduler(runner, locker)

	_, err = s.RunNow(context.Background(), date(2024, 5, 1))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Zero(t, runner.calls.Load())

	require.NoError(t, held.Release(context.Background()))
	_, err = s.RunNow(context.Background(), date(2024, 5, 1))
	require.NoError(t, err)
}

func TestRunNowReleasesLeaseOnFailure(t *testing.T) {
	locker := lock.NewMemory()
	runner := newBlockingRunner()
	runner.err = errors.New("boom")
	close(runner.release)
	s := NewScheduler(runner, locker)

	_, err := s.RunNow(context.Background(), date(2024, 5, 1))
	require.Error(t, err)

	lease, err := locker.TryLock(context.Background(), LockName)
	require.NoError(t, err)
	require.NoError(t, lease.Release(context.Background()))
}

func TestRunNowRejectsFutureDay(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	clock := func() time.Time { return time.Date(2028, 12, 25, 22, 0, 0, 0, time.UTC) }
	s := NewScheduler(runner, lock.NewMemory(), WithClock(clock))

	_, err := s.RunNow(context.Background(), date(2040, 1, 1))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Zero(t, runner.calls.Load())

	_, err = s.RunNow(context.Background(), date(2028, 12, 25))
	require.NoError(t, err)
	assert.EqualValues(t, 1, runner.calls.Load())
}

func TestStartRunsWarmUp(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	clock := func() time.Time { return time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC) }
	s := NewScheduler(runner, lock.NewMemory(),
		WithSchedule(config.RetentionConfig{RunHourUTC: 2, WarmUp: true}),
		WithClock(clock),
	)

	s.Start(context.Background())
	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("warm-up run did not start")
	}
	s.Stop()

	assert.EqualValues(t, 1, runner.calls.Load())
	assert.Equal(t, SchedulerActor, <-runner.actors)
}

func TestStartWithoutWarmUpWaits(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)
	s := NewScheduler(runner, lock.NewMemory(), WithSchedule(config.RetentionConfig{RunHourUTC: 2}))

	s.Start(context.Background())
	s.Stop()
	assert.Zero(t, runner.calls.Load())
}

func TestNextRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{"later today", time.Date(2024, 5, 1, 1, 30, 0, 0, time.UTC), 2, time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)},
		{"exactly on the hour", time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC), 2, time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC)},
		{"already passed", time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), 2, time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC)},
		{"month end", time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), 0, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"non-UTC input", time.Date(2024, 5, 1, 3, 0, 0, 0, time.FixedZone("CEST", 2*3600)), 2, time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextRun(tt.now, tt.hour))
		})
	}
}
