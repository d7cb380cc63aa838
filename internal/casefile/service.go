package casefile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/sentinel"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

const maxTitleLength = 500

// Service handles case files after creation.
type Service struct {
	store      Store
	allocator  Allocator
	containers Containers
	tx         txcontext.Runner
	auditor    AuditPublisher
	logger     *slog.Logger
}

func NewService(store Store, allocator Allocator, containers Containers, tx txcontext.Runner, auditor AuditPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		allocator:  allocator,
		containers: containers,
		tx:         tx,
		auditor:    auditor,
		logger:     logger,
	}
}

// Detail is a case file with its documents in folio order.
type Detail struct {
	CaseFile  *models.CaseFile   `json:"case_file"`
	Documents []*models.Document `json:"documents"`
}

func (s *Service) Get(ctx context.Context, caseFileID id.CaseFileID) (*Detail, error) {
	cf, err := s.store.GetCaseFile(ctx, caseFileID)
	if err != nil {
		return nil, translate(err)
	}
	docs, err := s.store.ListDocuments(ctx, caseFileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	return &Detail{CaseFile: cf, Documents: docs}, nil
}

// Close sets the closing date of an active case file and moves it to
// closed_in_management. The retention engine derives the new phase.
func (s *Service) Close(ctx context.Context, caseFileID id.CaseFileID, closingDate time.Time) (*models.CaseFile, error) {
	var cf *models.CaseFile
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		cf, err = s.store.GetCaseFileForUpdate(txCtx, caseFileID)
		if err != nil {
			return translate(err)
		}
		closingDate = models.Day(closingDate)
		if err := cf.CanClose(closingDate); err != nil {
			return err
		}
		cf.ApplyClose(closingDate, requestcontext.Now(txCtx))
		if err := s.store.UpdateCaseFile(txCtx, cf); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close case file")
		}
		return s.auditor.Emit(txCtx, audit.Event{
			Action:     string(audit.EventCaseFileClosed),
			EntityType: audit.EntityCaseFile,
			EntityID:   cf.ID.String(),
			Details:    fmt.Sprintf("case file %s closed on %s", cf.Code, closingDate.Format(time.DateOnly)),
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "case file closed",
		"request_id", requestcontext.RequestID(ctx),
		"case_file_id", cf.ID,
		"closing_date", closingDate.Format(time.DateOnly),
	)
	return cf, nil
}

// AddDocument files a document under the next folio of the case file.
func (s *Service) AddDocument(ctx context.Context, caseFileID id.CaseFileID, in DocumentInput) (*models.Document, error) {
	var doc *models.Document
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		cf, err := s.store.GetCaseFileForUpdate(txCtx, caseFileID)
		if err != nil {
			return translate(err)
		}
		if cf.Status.IsFinal() {
			return dErrors.Newf(dErrors.CodeInvalidState, "case file %s is %s", cf.Code, cf.Status)
		}
		doc, err = addDocument(txCtx, s.store, s.allocator, s.containers, s.auditor, cf, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// addDocument must run inside a transaction holding the case file lock.
func addDocument(ctx context.Context, store Store, allocator Allocator, containers Containers, auditor AuditPublisher, cf *models.CaseFile, in DocumentInput) (*models.Document, error) {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, dErrors.New(dErrors.CodeValidation, "document title is required")
	case len(title) > maxTitleLength:
		return nil, dErrors.Newf(dErrors.CodeValidation, "document title must be at most %d characters", maxTitleLength)
	}
	docDate := requestcontext.Today(ctx)
	if !in.DocumentDate.IsZero() {
		docDate = models.Day(in.DocumentDate)
	}

	folio, err := store.MaxFolio(ctx, cf.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read folio")
	}
	if cf.FolderID != nil {
		if _, err := containers.PlaceFolio(ctx, *cf.FolderID); err != nil {
			return nil, err
		}
	}
	number, err := allocator.NextDocumentNumber(ctx)
	if err != nil {
		return nil, err
	}
	doc := &models.Document{
		ID:           id.DocumentID(uuid.New()),
		CaseFileID:   cf.ID,
		Number:       number,
		Folio:        folio + 1,
		Title:        title,
		DocumentDate: docDate,
		CreatedBy:    requestcontext.Actor(ctx),
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "document number or folio already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create document")
	}
	if err := auditor.Emit(ctx, audit.Event{
		Action:     string(audit.EventDocumentAdded),
		EntityType: audit.EntityDocument,
		EntityID:   doc.ID.String(),
		Details:    fmt.Sprintf("document %s filed as folio %d of case file %s", doc.Number, doc.Folio, cf.Code),
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit document")
	}
	return doc, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "case file not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case file")
	}
}
