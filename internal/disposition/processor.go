// Package disposition applies an operator's final decision to a batch of
// case files.
//
// A batch is best effort: it runs in one transaction, but each item runs
// under its own savepoint, so an item that fails its preconditions is
// reported and the rest of the batch still commits.
package disposition

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

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/sentinel"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

const (
	maxBatchSize   = 500
	maxNotesLength = 2000
)

var tracer = otel.Tracer("archivist.disposition")

type Store interface {
	GetCaseFile(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error)
	GetCaseFileForUpdate(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error)
	UpdateCaseFile(ctx context.Context, cf *models.CaseFile) error
	GetSeries(ctx context.Context, seriesID id.SeriesID) (*models.Series, error)
	GetSubseries(ctx context.Context, subseriesID id.SubseriesID) (*models.Subseries, error)
	ListDocuments(ctx context.Context, caseFileID id.CaseFileID) ([]*models.Document, error)
	SaveSnapshot(ctx context.Context, snap *models.CaseFileSnapshot) error
	CreateDispositionRecord(ctx context.Context, r *models.DispositionRecord) error
	ListDispositionRecords(ctx context.Context, caseFileID id.CaseFileID) ([]*models.DispositionRecord, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Processor struct {
	store   Store
	tx      txcontext.Runner
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Processor)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(p *Processor) {
		p.metrics = metrics
	}
}

func New(store Store, tx txcontext.Runner, auditor AuditPublisher, opts ...Option) *Processor {
	p := &Processor{
		store:   store,
		tx:      tx,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type BatchRequest struct {
	CaseFileIDs []id.CaseFileID
	Action      models.DispositionAction
	Notes       string
}

// Validate checks the batch as a whole. Per-item preconditions are checked
// while processing.
func (r BatchRequest) Validate() error {
	switch {
	case len(r.CaseFileIDs) == 0:
		return dErrors.New(dErrors.CodeValidation, "at least one case file is required")
	case len(r.CaseFileIDs) > maxBatchSize:
		return dErrors.Newf(dErrors.CodeValidation, "a batch holds at most %d case files", maxBatchSize)
	case len(r.Notes) > maxNotesLength:
		return dErrors.Newf(dErrors.CodeValidation, "notes must be at most %d characters", maxNotesLength)
	}
	if _, err := models.ParseDispositionAction(string(r.Action)); err != nil {
		return err
	}
	return nil
}

// ItemError reports why one case file of a batch was left unchanged.
type ItemError struct {
	CaseFileID id.CaseFileID `json:"case_file_id"`
	Code       dErrors.Code  `json:"code"`
	Message    string        `json:"message"`
}

type BatchResult struct {
	Processed int                         `json:"processed"`
	Failed    int                         `json:"failed"`
	Errors    []ItemError                 `json:"errors"`
	Records   []*models.DispositionRecord `json:"records"`
}

// Process applies the action to every case file in the batch.
func (p *Processor) Process(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "disposition.Process",
		trace.WithAttributes(
			attribute.String("disposition.action", string(req.Action)),
			attribute.Int("disposition.batch_size", len(req.CaseFileIDs)),
		),
	)
	defer span.End()

	result := &BatchResult{Errors: []ItemError{}, Records: []*models.DispositionRecord{}}
	err := p.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, caseFileID := range req.CaseFileIDs {
			var record *models.DispositionRecord
			err := p.tx.Savepoint(txCtx, func(spCtx context.Context) error {
				var err error
				record, err = p.apply(spCtx, caseFileID, req)
				return err
			})
			if err != nil {
				if ctxErr := txCtx.Err(); ctxErr != nil {
					return dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "disposition batch interrupted")
				}
				result.Failed++
				result.Errors = append(result.Errors, p.itemError(ctx, caseFileID, err))
				p.metrics.IncItem(req.Action, "failed")
				continue
			}
			result.Processed++
			result.Records = append(result.Records, record)
			p.metrics.IncItem(req.Action, "processed")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "disposition batch failed")
	}

	span.SetAttributes(
		attribute.Int("disposition.processed", result.Processed),
		attribute.Int("disposition.failed", result.Failed),
	)
	span.SetStatus(codes.Ok, "")
	p.logger.InfoContext(ctx, "disposition batch processed",
		"request_id", requestcontext.RequestID(ctx),
		"action", req.Action,
		"processed", result.Processed,
		"failed", result.Failed,
	)
	return result, nil
}

func (p *Processor) itemError(ctx context.Context, caseFileID id.CaseFileID, err error) ItemError {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		p.logger.ErrorContext(ctx, "disposition item failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_file_id", caseFileID,
			"error", err,
		)
	}
	return ItemError{CaseFileID: caseFileID, Code: code, Message: dErrors.Message(err)}
}

func (p *Processor) apply(ctx context.Context, caseFileID id.CaseFileID, req BatchRequest) (*models.DispositionRecord, error) {
	cf, err := p.store.GetCaseFileForUpdate(ctx, caseFileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case file not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock case file")
	}
	now := requestcontext.Now(ctx)
	if err := cf.CanApply(req.Action, requestcontext.Today(ctx)); err != nil {
		return nil, err
	}
	retention, err := p.retentionFor(ctx, cf)
	if err != nil {
		return nil, err
	}
	track, deadline := cf.CurrentTrack()

	if req.Action == models.ActionDestroy {
		if err := p.snapshot(ctx, cf, now); err != nil {
			return nil, err
		}
	}

	outcome := cf.ApplyDisposition(req.Action, now)
	if err := p.store.UpdateCaseFile(ctx, cf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update case file")
	}

	record := &models.DispositionRecord{
		ID:          id.DispositionID(uuid.New()),
		CaseFileID:  cf.ID,
		Track:       track,
		Deadline:    deadline,
		Action:      req.Action,
		Disposition: retention.Disposition,
		Outcome:     outcome,
		Operator:    requestcontext.Actor(ctx),
		Notes:       req.Notes,
		CreatedAt:   now,
	}
	if err := p.store.CreateDispositionRecord(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record disposition")
	}

	details := fmt.Sprintf("%s applied to case file %s (%s track): %s", req.Action, cf.Code, track, outcome)
	if req.Notes != "" {
		details += "; " + req.Notes
	}
	if err := p.auditor.Emit(ctx, audit.Event{
		Action:     string(audit.EventDispositionApplied),
		EntityType: audit.EntityCaseFile,
		EntityID:   cf.ID.String(),
		Details:    details,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit disposition")
	}
	return record, nil
}

// snapshot archives the case file's metadata and documents ahead of its
// destruction.
func (p *Processor) snapshot(ctx context.Context, cf *models.CaseFile, now time.Time) error {
	docs, err := p.store.ListDocuments(ctx, cf.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load documents for snapshot")
	}
	snap := &models.CaseFileSnapshot{
		CaseFileID: cf.ID,
		TakenAt:    now,
		TakenBy:    requestcontext.Actor(ctx),
		CaseFile:   *cf,
		Documents:  make([]models.Document, 0, len(docs)),
	}
	for _, d := range docs {
		snap.Documents = append(snap.Documents, *d)
	}
	if err := p.store.SaveSnapshot(ctx, snap); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to archive case file snapshot")
	}
	return p.auditor.Emit(ctx, audit.Event{
		Action:     string(audit.EventCaseFileDestroyed),
		EntityType: audit.EntityCaseFile,
		EntityID:   cf.ID.String(),
		Details:    fmt.Sprintf("metadata snapshot of case file %s archived with %d documents", cf.Code, len(docs)),
	})
}

func (p *Processor) retentionFor(ctx context.Context, cf *models.CaseFile) (models.Retention, error) {
	series, err := p.store.GetSeries(ctx, cf.SeriesID)
	if err != nil {
		return models.Retention{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load series")
	}
	var sub *models.Subseries
	if cf.SubseriesID != nil {
		if sub, err = p.store.GetSubseries(ctx, *cf.SubseriesID); err != nil {
			return models.Retention{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subseries")
		}
	}
	return models.EffectiveRetention(*series, sub), nil
}

// ListByCaseFile returns the disposition ledger of one case file, oldest first.
func (p *Processor) ListByCaseFile(ctx context.Context, caseFileID id.CaseFileID) ([]*models.DispositionRecord, error) {
	if _, err := p.store.GetCaseFile(ctx, caseFileID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "case file not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case file")
	}
	records, err := p.store.ListDispositionRecords(ctx, caseFileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list dispositions")
	}
	return records, nil
}
