// Package sequence mints the human-legible identifiers of the records
// domain: document numbers, case-file codes, folder, package and box numbers.
//
// Every number comes from a counter row incremented inside the caller's
// transaction. The row lock taken by the increment serializes concurrent
// allocations of the same counter until the transaction ends, and a rolled
// back transaction gives its number back.
package sequence

import (
	"context"
	"log/slog"
	"strconv"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/requestcontext"
)

// CounterStore advances named counters.
type CounterStore interface {
	Increment(ctx context.Context, c models.Counter) (int64, error)
}

type Allocator struct {
	counters CounterStore
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Allocator)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		a.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(a *Allocator) {
		a.metrics = m
	}
}

func New(counters CounterStore, opts ...Option) *Allocator {
	a := &Allocator{counters: counters}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) next(ctx context.Context, c models.Counter) (int64, error) {
	n, err := a.counters.Increment(ctx, c)
	if err != nil {
		if a.logger != nil {
			a.logger.ErrorContext(ctx, "sequence allocation failed",
				"counter", c.Name(),
				"error", err,
			)
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate "+string(c.Kind)+" number")
	}
	a.metrics.IncAllocated(c.Kind)
	return n, nil
}

// NextDocumentNumber returns YYYYMMDD-NNNN for the request's calendar day.
// NNNN restarts at 0001 each day.
func (a *Allocator) NextDocumentNumber(ctx context.Context) (string, error) {
	day := requestcontext.Today(ctx)
	n, err := a.next(ctx, models.DocumentCounter(day))
	if err != nil {
		return "", err
	}
	return models.FormatDocumentNumber(day, n), nil
}

func (a *Allocator) NextCaseFileCode(ctx context.Context) (string, error) {
	n, err := a.next(ctx, models.CaseFileCounter)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

// NextFolderNumber is global; it never resets per office or year.
func (a *Allocator) NextFolderNumber(ctx context.Context) (int64, error) {
	return a.next(ctx, models.FolderCounter)
}

func (a *Allocator) NextPackageNumber(ctx context.Context) (int64, error) {
	return a.next(ctx, models.PackageCounter)
}

// NextBoxNumber is scoped to office.
func (a *Allocator) NextBoxNumber(ctx context.Context, office id.OfficeID) (int64, error) {
	return a.next(ctx, models.BoxCounter(office))
}
