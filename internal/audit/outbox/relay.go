// Package outbox relays committed audit events from the Postgres outbox
// table to Kafka. Delivery is at least once: entries are stamped published
// only after the broker acknowledges them.
package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"archivist/pkg/platform/circuit"
	auditstore "archivist/pkg/platform/audit/store/postgres"
	txcontext "archivist/pkg/platform/tx"
)

// Store is the outbox side of the audit store.
type Store interface {
	FetchPending(ctx context.Context, limit int) ([]auditstore.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Sink delivers a batch of entries to the broker.
type Sink interface {
	Publish(ctx context.Context, entries []auditstore.OutboxEntry) error
}

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

type Relay struct {
	store     Store
	tx        txcontext.Runner
	sink      Sink
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *Metrics
	breaker   *circuit.Breaker
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithBreaker replaces the breaker that tracks consecutive sink failures.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		if b != nil {
			r.breaker = b
		}
	}
}

func New(store Store, tx txcontext.Runner, sink Sink, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		tx:        tx,
		sink:      sink,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
		breaker:   circuit.New("audit_outbox"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays on every tick until ctx is cancelled. Failed batches are
// logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					if ctx.Err() == nil {
						r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
					}
					break
				}
				// An open circuit sends one probe batch per tick.
				if n < r.batchSize || r.breaker.IsOpen() {
					break
				}
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many entries it delivered.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var delivered int
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entries, err := r.store.FetchPending(txCtx, r.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if err := r.sink.Publish(txCtx, entries); err != nil {
			r.metrics.IncPublishFailures()
			if _, change := r.breaker.RecordFailure(); change.Opened {
				r.logger.ErrorContext(ctx, "audit relay circuit opened", "error", err)
			}
			return err
		}
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "audit relay circuit closed")
		}
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := r.store.MarkPublished(txCtx, ids, time.Now()); err != nil {
			return err
		}
		delivered = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.metrics.AddPublished(delivered)
	return delivered, nil
}

func (r *Relay) Name() string { return "audit_outbox" }

// Check fails while the sink circuit is open.
func (r *Relay) Check(context.Context) error {
	if r.breaker.IsOpen() {
		return errors.New("audit relay circuit open")
	}
	return nil
}
