// Package casefile creates, closes and files case files.
//
// Creation is one unit of work: the code, the case file, its folder and
// package placement and an optional first document commit together, and a
// failure before commit gives back every number allocated on the way.
// Placement is the exception: a physical case file whose folder or package
// cannot be arranged is still created, and the failure is reported.
package casefile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"archivist/internal/container"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/sentinel"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

var tracer = otel.Tracer("archivist.casefile")

type Orchestrator struct {
	store      Store
	allocator  Allocator
	containers Containers
	tx         txcontext.Runner
	auditor    AuditPublisher
	logger     *slog.Logger
	metrics    *Metrics
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

func NewOrchestrator(store Store, allocator Allocator, containers Containers, tx txcontext.Runner, auditor AuditPublisher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		allocator:  allocator,
		containers: containers,
		tx:         tx,
		auditor:    auditor,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DocumentInput describes a document filed in a case file.
type DocumentInput struct {
	Title        string
	DocumentDate time.Time
}

type CreateRequest struct {
	OfficeID     id.OfficeID
	SeriesID     id.SeriesID
	SubseriesID  *id.SubseriesID
	Support      models.SupportType
	OpeningDate  *time.Time
	ClosingDate  *time.Time
	CustomFields []models.CustomField
	// AllowDuplicates skips the duplicate-sensitive custom field check.
	AllowDuplicates bool
	// BoxID places the new folder of a physical case file in a box.
	BoxID           *id.BoxID
	InitialDocument *DocumentInput
}

type CreateResult struct {
	CaseFile *models.CaseFile `json:"case_file"`
	Folder   *models.Folder   `json:"folder,omitempty"`
	Package  *models.Package  `json:"package,omitempty"`
	Document *models.Document `json:"document,omitempty"`
	// PlacementError is set when a physical case file was created without
	// its folder or package.
	PlacementError string `json:"placement_error,omitempty"`
}

// Create registers a case file.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	ctx, span := tracer.Start(ctx, "casefile.Create",
		trace.WithAttributes(
			attribute.String("casefile.support", string(req.Support)),
			attribute.String("casefile.office_id", req.OfficeID.String()),
		),
	)
	defer span.End()

	result := &CreateResult{}
	err := o.tx.RunInTx(ctx, func(txCtx context.Context) error {
		series, sub, err := o.schedule(txCtx, req)
		if err != nil {
			return err
		}
		if err := o.checkDuplicates(txCtx, req); err != nil {
			return err
		}
		opening, closing, overridden, err := resolveDates(req, requestcontext.Today(txCtx))
		if err != nil {
			return err
		}

		code, err := o.allocator.NextCaseFileCode(txCtx)
		if err != nil {
			return err
		}
		now := requestcontext.Now(txCtx)
		cf := &models.CaseFile{
			ID:                    id.CaseFileID(uuid.New()),
			Code:                  code,
			OfficeID:              req.OfficeID,
			SeriesID:              series.ID,
			SubseriesID:           req.SubseriesID,
			Support:               req.Support,
			OpeningDate:           opening,
			ClosingDate:           closing,
			Phase:                 models.PhaseActive,
			Status:                models.StatusActive,
			Availability:          models.AvailabilityAvailable,
			CustomFields:          req.CustomFields,
			OpeningDateOverridden: overridden,
			CreatedBy:             requestcontext.Actor(txCtx),
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		subName := ""
		if sub != nil {
			subName = sub.Name
		}
		cf.Name = models.DisplayName(series.Name, subName, cf.FirstCustomValue())
		if closing != nil {
			cf.Status = models.StatusClosedInManagement
		}
		lifecycle, _ := models.Evaluate(cf, models.EffectiveRetention(*series, sub), requestcontext.Today(txCtx))
		cf.ApplyLifecycle(lifecycle, now)

		if err := o.store.CreateCaseFile(txCtx, cf); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Newf(dErrors.CodeConflict, "case file code %s is already taken", code)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case file")
		}
		result.CaseFile = cf

		if cf.Support == models.SupportPhysical {
			o.place(txCtx, cf, req.BoxID, result)
		}

		if req.InitialDocument != nil {
			doc, err := addDocument(txCtx, o.store, o.allocator, o.containers, o.auditor, cf, *req.InitialDocument)
			if err != nil {
				return err
			}
			result.Document = doc
		}

		if err := o.auditor.Emit(txCtx, audit.Event{
			Action:     string(audit.EventCaseFileCreated),
			EntityType: audit.EntityCaseFile,
			EntityID:   cf.ID.String(),
			Details:    fmt.Sprintf("case file %s %q created (%s)", cf.Code, cf.Name, cf.Support),
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit case file creation")
		}
		if overridden {
			if err := o.auditor.Emit(txCtx, audit.Event{
				Action:     string(audit.EventCaseFileOpeningOverride),
				EntityType: audit.EntityCaseFile,
				EntityID:   cf.ID.String(),
				Details: fmt.Sprintf("electronic case file %s opened on %s instead of %s",
					cf.Code, opening.Format(time.DateOnly), requestcontext.Today(txCtx).Format(time.DateOnly)),
			}); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit opening date override")
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	o.metrics.IncCreated(req.Support, result.PlacementError != "")
	return result, nil
}

func (o *Orchestrator) schedule(ctx context.Context, req CreateRequest) (*models.Series, *models.Subseries, error) {
	series, err := o.store.GetSeries(ctx, req.SeriesID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "series not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load series")
	}
	if req.SubseriesID == nil {
		if series.RequiresSubseries {
			return nil, nil, dErrors.Newf(dErrors.CodeValidation, "series %s requires a subseries", series.Code)
		}
		return series, nil, nil
	}
	sub, err := o.store.GetSubseries(ctx, *req.SubseriesID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "subseries not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subseries")
	}
	if sub.SeriesID != series.ID {
		return nil, nil, dErrors.Newf(dErrors.CodeValidation, "subseries %s does not belong to series %s", sub.Code, series.Code)
	}
	return series, sub, nil
}

// checkDuplicates rejects duplicate-sensitive values already used by another
// open case file of the office.
func (o *Orchestrator) checkDuplicates(ctx context.Context, req CreateRequest) error {
	if req.AllowDuplicates {
		return nil
	}
	for _, field := range req.CustomFields {
		value := strings.TrimSpace(field.Value)
		if !field.DuplicateSensitive || value == "" {
			continue
		}
		matches, err := o.store.FindOpenWithCustomField(ctx, req.OfficeID, field.Name, value)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check duplicate case files")
		}
		if len(matches) > 0 {
			return dErrors.Newf(dErrors.CodeConflict, "an open case file already has %s %q", field.Name, value)
		}
	}
	return nil
}

// resolveDates applies the support rule. Physical case files take the dates
// as given, defaulting the opening to today. Electronic case files open
// today; a different supplied opening date is kept and flagged.
func resolveDates(req CreateRequest, today time.Time) (time.Time, *time.Time, bool, error) {
	opening := today
	overridden := false
	if req.OpeningDate != nil {
		supplied := models.Day(*req.OpeningDate)
		if req.Support == models.SupportElectronic && !supplied.Equal(today) {
			overridden = true
		}
		opening = supplied
	}
	var closing *time.Time
	if req.ClosingDate != nil {
		c := models.Day(*req.ClosingDate)
		if c.Before(opening) {
			return time.Time{}, nil, false, dErrors.New(dErrors.CodeValidation, "closing date cannot precede opening date")
		}
		closing = &c
	}
	return opening, closing, overridden, nil
}

// place gives a physical case file its folder and package. Failures are
// isolated in a savepoint and reported on the result.
func (o *Orchestrator) place(ctx context.Context, cf *models.CaseFile, boxID *id.BoxID, result *CreateResult) {
	err := o.tx.Savepoint(ctx, func(spCtx context.Context) error {
		caseFileID := cf.ID
		folder, err := o.containers.CreateFolder(spCtx, container.FolderRequest{
			OfficeID:   cf.OfficeID,
			BoxID:      boxID,
			CaseFileID: &caseFileID,
		})
		if err != nil {
			return err
		}
		cf.FolderID = &folder.ID
		if err := o.store.UpdateCaseFile(spCtx, cf); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to link folder")
		}

		pkg, err := o.containers.GetOrCreateActivePackage(spCtx)
		if err != nil {
			return err
		}
		assigned, err := o.containers.AssignCaseFileToPackage(spCtx, container.AssignRequest{
			CaseFileID: cf.ID,
			PackageID:  pkg.ID,
		})
		if err != nil {
			return err
		}
		cf.PackageID = &assigned.Package.ID
		result.Folder = folder
		result.Package = assigned.Package
		return nil
	})
	if err == nil {
		return
	}
	cf.FolderID = nil
	cf.PackageID = nil
	result.PlacementError = dErrors.Message(err)
	o.logger.WarnContext(ctx, "case file created without placement",
		"request_id", requestcontext.RequestID(ctx),
		"case_file_id", cf.ID,
		"code", cf.Code,
		"error", err,
	)
}
