package retention

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"archivist/internal/platform/config"
	"archivist/internal/platform/lock"
	"archivist/internal/records/models"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/requestcontext"
)

// LockName is the cluster-wide lease every run holds.
const LockName = "archivist:retention-run"

// SchedulerActor is the audit actor of scheduled runs.
const SchedulerActor = "scheduler"

// Runner executes one retention run.
type Runner interface {
	Run(ctx context.Context, today time.Time) (*RunReport, error)
}

// Scheduler runs the engine once after start and then daily at a fixed UTC
// hour. Runs never overlap: an in-process guard covers this instance and a
// Locker lease covers every instance sharing the database.
type Scheduler struct {
	runner  Runner
	locker  lock.Locker
	runHour int
	warmUp  bool
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics

	running sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

type SchedulerOption func(*Scheduler)

func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func WithSchedulerMetrics(metrics *Metrics) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = metrics
	}
}

// WithSchedule sets the daily run hour and whether a run follows Start.
func WithSchedule(cfg config.RetentionConfig) SchedulerOption {
	return func(s *Scheduler) {
		s.runHour = cfg.RunHourUTC
		s.warmUp = cfg.WarmUp
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(runner Runner, locker lock.Locker, opts ...SchedulerOption) *Scheduler {
	defaults := config.Default().Retention
	s := &Scheduler{
		runner:  runner,
		locker:  locker,
		runHour: defaults.RunHourUTC,
		warmUp:  defaults.WarmUp,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "retention_scheduler"))
	return s
}

// Start launches the schedule loop. Call it once.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.logger.InfoContext(ctx, "retention scheduler started",
			"run_hour_utc", s.runHour,
			"warm_up", s.warmUp,
		)
		if s.warmUp {
			s.tick(ctx)
		}
		for {
			now := s.now()
			timer := time.NewTimer(NextRun(now, s.runHour).Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				s.logger.Info("retention scheduler stopped")
				return
			case <-timer.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// RunNow runs the engine immediately. It fails with CodeValidation when today
// lies after the scheduler's clock and with CodeConflict while another run
// holds this instance's guard or the shared lease.
func (s *Scheduler) RunNow(ctx context.Context, today time.Time) (*RunReport, error) {
	if models.Day(today).After(models.Day(s.now())) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "cannot evaluate retention as of %s, a future day", today.Format(time.DateOnly))
	}
	if !s.running.TryLock() {
		s.metrics.IncSkipped("in_flight")
		return nil, dErrors.New(dErrors.CodeConflict, "a retention run is already in progress")
	}
	defer s.running.Unlock()

	lease, err := s.locker.TryLock(ctx, LockName)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			s.metrics.IncSkipped("locked")
			return nil, dErrors.New(dErrors.CodeConflict, "a retention run is already in progress on another instance")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire retention lock")
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.ErrorContext(ctx, "failed to release retention lock", "error", err)
		}
	}()

	return s.runner.Run(ctx, today)
}

// tick runs on schedule. Failures are logged and the loop waits for the
// next trigger.
func (s *Scheduler) tick(ctx context.Context) {
	ctx = requestcontext.WithActor(ctx, SchedulerActor)
	today := models.Day(s.now())
	report, err := s.RunNow(ctx, today)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "scheduled retention run finished",
			"today", today.Format(time.DateOnly),
			"updated", report.Updated,
			"alerts_raised", report.AlertsRaised,
		)
	case dErrors.HasCode(err, dErrors.CodeConflict):
		s.logger.InfoContext(ctx, "scheduled retention run skipped", "reason", dErrors.Message(err))
	default:
		s.logger.ErrorContext(ctx, "scheduled retention run failed", "error", err)
	}
}

// NextRun is the first instant after now at hour:00 UTC.
func NextRun(now time.Time, hour int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
