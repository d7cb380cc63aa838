package casefile

import (
	"context"

	"archivist/internal/container"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	"archivist/pkg/platform/audit"
)

// Store is the slice of the records store case-file operations use.
type Store interface {
	CreateCaseFile(ctx context.Context, cf *models.CaseFile) error
	GetCaseFile(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error)
	GetCaseFileForUpdate(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error)
	UpdateCaseFile(ctx context.Context, cf *models.CaseFile) error
	FindOpenWithCustomField(ctx context.Context, office id.OfficeID, name, value string) ([]id.CaseFileID, error)

	GetSeries(ctx context.Context, seriesID id.SeriesID) (*models.Series, error)
	GetSubseries(ctx context.Context, subseriesID id.SubseriesID) (*models.Subseries, error)

	CreateDocument(ctx context.Context, d *models.Document) error
	ListDocuments(ctx context.Context, caseFileID id.CaseFileID) ([]*models.Document, error)
	MaxFolio(ctx context.Context, caseFileID id.CaseFileID) (int, error)
}

type Allocator interface {
	NextCaseFileCode(ctx context.Context) (string, error)
	NextDocumentNumber(ctx context.Context) (string, error)
}

// Containers places physical case files.
type Containers interface {
	CreateFolder(ctx context.Context, req container.FolderRequest) (*models.Folder, error)
	PlaceFolio(ctx context.Context, folderID id.FolderID) (*models.Folder, error)
	GetOrCreateActivePackage(ctx context.Context) (*models.Package, error)
	AssignCaseFileToPackage(ctx context.Context, req container.AssignRequest) (*container.AssignResult, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
