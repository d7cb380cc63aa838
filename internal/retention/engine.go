// Package retention advances case files through the retention lifecycle and
// raises advance-warning alerts.
//
// A run walks every non-final case file in id order, one page per
// transaction:
//  1. backfill the first document date from linked documents
//  2. derive the retention start date
//  3. derive the management and central end dates
//  4. recompute the phase and the status it drives
//
// and then inserts, if absent, the alert the new lifecycle warrants. Rows are
// only written when a derived value differs from what is stored, so a second
// run over unchanged data writes nothing.
package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"archivist/internal/platform/config"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/sentinel"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

var tracer = otel.Tracer("archivist.retention")

// Store is the slice of the records store a run reads and writes.
type Store interface {
	ListForRetention(ctx context.Context, after id.CaseFileID, limit int) ([]*models.CaseFile, error)
	EarliestDocumentDates(ctx context.Context, ids []id.CaseFileID) (map[id.CaseFileID]time.Time, error)
	GetSeries(ctx context.Context, seriesID id.SeriesID) (*models.Series, error)
	GetSubseries(ctx context.Context, subseriesID id.SubseriesID) (*models.Subseries, error)
	SaveLifecycle(ctx context.Context, cf *models.CaseFile) error
	InsertAlertIfAbsent(ctx context.Context, a *models.Alert) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RunReport summarizes one run.
type RunReport struct {
	Today        time.Time     `json:"today"`
	Scanned      int           `json:"scanned"`
	Backfilled   int           `json:"backfilled"`
	Updated      int           `json:"updated"`
	AlertsRaised int           `json:"alerts_raised"`
	Failed       int           `json:"failed"`
	Duration     time.Duration `json:"duration_ns"`
}

type Engine struct {
	store     Store
	tx        txcontext.Runner
	auditor   AuditPublisher
	batchSize int
	leadDays  int
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// WithConfig sets the page size and alert lead window.
func WithConfig(cfg config.RetentionConfig) Option {
	return func(e *Engine) {
		if cfg.BatchSize > 0 {
			e.batchSize = cfg.BatchSize
		}
		if cfg.AlertLeadDays >= 0 {
			e.leadDays = cfg.AlertLeadDays
		}
	}
}

func NewEngine(store Store, tx txcontext.Runner, auditor AuditPublisher, opts ...Option) *Engine {
	defaults := config.Default().Retention
	e := &Engine{
		store:     store,
		tx:        tx,
		auditor:   auditor,
		batchSize: defaults.BatchSize,
		leadDays:  defaults.AlertLeadDays,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// auditRun records a run that changed or failed something. A run that found
// every case file up to date leaves the audit log untouched.
func (e *Engine) auditRun(ctx context.Context, report RunReport) error {
	if report.Backfilled+report.Updated+report.AlertsRaised+report.Failed == 0 {
		return nil
	}
	return e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return e.auditor.Emit(txCtx, audit.Event{
			Action:     string(audit.EventRetentionRun),
			EntityType: audit.EntityRetention,
			EntityID:   report.Today.Format(time.DateOnly),
			Details: fmt.Sprintf("scanned %d, updated %d, alerts %d, failed %d",
				report.Scanned, report.Updated, report.AlertsRaised, report.Failed),
		})
	})
}

type scheduleKey struct {
	series    id.SeriesID
	subseries id.SubseriesID
}

// run holds the state of one Run call.
type run struct {
	today     time.Time
	report    RunReport
	schedules map[scheduleKey]models.Retention
}

// Run recomputes every non-final case file as of today. A case file that
// fails is logged, counted and skipped; storage failures around a page
// abort the run.
func (e *Engine) Run(ctx context.Context, today time.Time) (*RunReport, error) {
	start := time.Now()
	today = models.Day(today)
	ctx, span := tracer.Start(ctx, "retention.Run",
		trace.WithAttributes(
			attribute.String("retention.today", today.Format(time.DateOnly)),
			attribute.Int("retention.batch_size", e.batchSize),
		),
	)
	defer span.End()

	r := &run{
		today:     today,
		report:    RunReport{Today: today},
		schedules: make(map[scheduleKey]models.Retention),
	}
	var after id.CaseFileID
	for {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "context canceled")
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "retention run cancelled")
		}
		last, n, err := e.runPage(ctx, r, after)
		if err != nil {
			e.metrics.IncRun("error")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if n < e.batchSize {
			break
		}
		after = last
	}

	r.report.Duration = time.Since(start)
	if err := e.auditRun(ctx, r.report); err != nil {
		e.metrics.IncRun("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit retention run")
	}

	e.metrics.IncRun("success")
	e.metrics.ObserveRun(r.report)
	span.SetAttributes(
		attribute.Int("retention.scanned", r.report.Scanned),
		attribute.Int("retention.updated", r.report.Updated),
		attribute.Int("retention.alerts", r.report.AlertsRaised),
	)
	span.SetStatus(codes.Ok, "")
	e.logger.InfoContext(ctx, "retention run completed",
		"today", today.Format(time.DateOnly),
		"scanned", r.report.Scanned,
		"backfilled", r.report.Backfilled,
		"updated", r.report.Updated,
		"alerts_raised", r.report.AlertsRaised,
		"failed", r.report.Failed,
		"duration", r.report.Duration,
	)
	report := r.report
	return &report, nil
}

// runPage processes the page of case files after the given id in one
// transaction and returns the last id seen and the page length.
func (e *Engine) runPage(ctx context.Context, r *run, after id.CaseFileID) (id.CaseFileID, int, error) {
	ctx, span := tracer.Start(ctx, "retention.page")
	defer span.End()

	var (
		last id.CaseFileID
		n    int
	)
	err := e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		page, err := e.store.ListForRetention(txCtx, after, e.batchSize)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list case files for retention")
		}
		n = len(page)
		if n == 0 {
			return nil
		}
		last = page[n-1].ID

		firstDates, err := e.store.EarliestDocumentDates(txCtx, missingFirstDate(page))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load first document dates")
		}
		for _, cf := range page {
			r.report.Scanned++
			err := e.tx.Savepoint(txCtx, func(spCtx context.Context) error {
				return e.evaluate(spCtx, r, cf, firstDates)
			})
			if err != nil {
				r.report.Failed++
				e.metrics.IncFailed()
				e.logger.ErrorContext(ctx, "retention evaluation failed",
					"case_file_id", cf.ID,
					"code", cf.Code,
					"error", err,
				)
			}
		}
		return nil
	})
	span.SetAttributes(attribute.Int("retention.page_size", n))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return last, n, err
}

func missingFirstDate(page []*models.CaseFile) []id.CaseFileID {
	var ids []id.CaseFileID
	for _, cf := range page {
		if cf.FirstDocumentDate == nil {
			ids = append(ids, cf.ID)
		}
	}
	return ids
}

func (e *Engine) evaluate(ctx context.Context, r *run, cf *models.CaseFile, firstDates map[id.CaseFileID]time.Time) error {
	backfilled := false
	if cf.FirstDocumentDate == nil {
		if d, ok := firstDates[cf.ID]; ok {
			first := models.Day(d)
			cf.FirstDocumentDate = &first
			backfilled = true
		}
	}

	retention, err := e.retentionFor(ctx, r, cf)
	if err != nil {
		return err
	}
	next, changed := models.Evaluate(cf, retention, r.today)
	if changed || backfilled {
		cf.ApplyLifecycle(next, requestcontext.Now(ctx))
		if err := e.store.SaveLifecycle(ctx, cf); err != nil {
			return fmt.Errorf("save lifecycle: %w", err)
		}
		if backfilled {
			r.report.Backfilled++
		}
		if changed {
			r.report.Updated++
			e.metrics.IncTransition(next.Phase)
		}
	}

	kind, deadline, due := models.DueAlert(next.Phase, next.Deadlines, retention.Disposition, r.today, e.leadDays)
	if !due {
		return nil
	}
	inserted, err := e.store.InsertAlertIfAbsent(ctx, &models.Alert{
		ID:         id.AlertID(uuid.New()),
		CaseFileID: cf.ID,
		Kind:       kind,
		RaisedOn:   r.today,
		Deadline:   deadline,
	})
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	if inserted {
		r.report.AlertsRaised++
		e.metrics.IncAlert(kind)
	}
	return nil
}

// retentionFor resolves the effective retention of a case file, caching
// schedule entries for the rest of the run.
func (e *Engine) retentionFor(ctx context.Context, r *run, cf *models.CaseFile) (models.Retention, error) {
	key := scheduleKey{series: cf.SeriesID}
	if cf.SubseriesID != nil {
		key.subseries = *cf.SubseriesID
	}
	if cached, ok := r.schedules[key]; ok {
		return cached, nil
	}
	series, err := e.store.GetSeries(ctx, cf.SeriesID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Retention{}, dErrors.Newf(dErrors.CodeNotFound, "series %s not found", cf.SeriesID)
		}
		return models.Retention{}, fmt.Errorf("load series: %w", err)
	}
	var sub *models.Subseries
	if cf.SubseriesID != nil {
		sub, err = e.store.GetSubseries(ctx, *cf.SubseriesID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return models.Retention{}, dErrors.Newf(dErrors.CodeNotFound, "subseries %s not found", *cf.SubseriesID)
			}
			return models.Retention{}, fmt.Errorf("load subseries: %w", err)
		}
	}
	retention := models.EffectiveRetention(*series, sub)
	r.schedules[key] = retention
	return retention, nil
}
