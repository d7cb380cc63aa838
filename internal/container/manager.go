// Package container manages the capacity-bound physical containers of the
// archive: boxes holding folders, folders holding document folios, and
// packages holding case files.
//
// Invariants:
//   - occupancy never exceeds capacity; a full or closed container rejects
//     placement with CodeCapacityExceeded and is left unchanged
//   - at most one package is open; the storage layer enforces this with a
//     unique partial index and every package write holds the package lock
//   - closing or filling a package opens its successor in the same
//     transaction
package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"archivist/internal/platform/config"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/sentinel"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

// Store is the slice of the records store the manager writes through.
type Store interface {
	CreateBox(ctx context.Context, b *models.Box) error
	GetBoxForUpdate(ctx context.Context, boxID id.BoxID) (*models.Box, error)
	UpdateBox(ctx context.Context, b *models.Box) error

	CreateFolder(ctx context.Context, f *models.Folder) error
	GetFolderForUpdate(ctx context.Context, folderID id.FolderID) (*models.Folder, error)
	UpdateFolder(ctx context.Context, f *models.Folder) error

	LockPackages(ctx context.Context) error
	CreatePackage(ctx context.Context, p *models.Package) error
	GetPackage(ctx context.Context, packageID id.PackageID) (*models.Package, error)
	GetPackageForUpdate(ctx context.Context, packageID id.PackageID) (*models.Package, error)
	GetOpenPackage(ctx context.Context) (*models.Package, error)
	UpdatePackage(ctx context.Context, p *models.Package) error
	ListPackages(ctx context.Context, state models.ContainerState) ([]*models.Package, error)

	GetCaseFileForUpdate(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error)
	SetCaseFilePackage(ctx context.Context, caseFileID id.CaseFileID, packageID id.PackageID, now time.Time) error
}

type Allocator interface {
	NextFolderNumber(ctx context.Context) (int64, error)
	NextPackageNumber(ctx context.Context) (int64, error)
	NextBoxNumber(ctx context.Context, office id.OfficeID) (int64, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Manager struct {
	store     Store
	allocator Allocator
	tx        txcontext.Runner
	auditor   AuditPublisher
	defaults  config.ContainerConfig
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithDefaults sets the capacities used when a request leaves them zero.
func WithDefaults(cfg config.ContainerConfig) Option {
	return func(m *Manager) {
		m.defaults = cfg
	}
}

func New(store Store, allocator Allocator, tx txcontext.Runner, auditor AuditPublisher, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		allocator: allocator,
		tx:        tx,
		auditor:   auditor,
		defaults:  config.Default().Containers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type BoxRequest struct {
	OfficeID id.OfficeID
	Capacity int
	Location models.Location
}

// CreateBox opens a new, empty box numbered within its office.
func (m *Manager) CreateBox(ctx context.Context, req BoxRequest) (*models.Box, error) {
	capacity := req.Capacity
	if capacity == 0 {
		capacity = m.defaults.BoxCapacityDefault
	}
	var box *models.Box
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := m.allocator.NextBoxNumber(txCtx, req.OfficeID)
		if err != nil {
			return err
		}
		box, err = models.NewBox(id.BoxID(uuid.New()), req.OfficeID, number, capacity, req.Location, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := m.store.CreateBox(txCtx, box); err != nil {
			return translate(err, "box")
		}
		return m.emit(txCtx, audit.EventBoxCreated, audit.EntityBox, box.ID.String(),
			fmt.Sprintf("box %d opened for office %s", box.Number, box.OfficeID))
	})
	if err != nil {
		return nil, err
	}
	m.metrics.IncContainerCreated("box")
	return box, nil
}

type FolderRequest struct {
	OfficeID   id.OfficeID
	BoxID      *id.BoxID
	CaseFileID *id.CaseFileID
	Capacity   int
}

// CreateFolder opens a folder, placing it in the requested box when one is
// given. The box must belong to the folder's office. It is locked for the check and the increment; a box that
// reaches capacity is marked full.
func (m *Manager) CreateFolder(ctx context.Context, req FolderRequest) (*models.Folder, error) {
	capacity := req.Capacity
	if capacity == 0 {
		capacity = m.defaults.FolderCapacityDefault
	}
	var folder *models.Folder
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		var box *models.Box
		if req.BoxID != nil {
			var err error
			box, err = m.store.GetBoxForUpdate(txCtx, *req.BoxID)
			if err != nil {
				return translate(err, "box")
			}
			if box.OfficeID != req.OfficeID {
				return dErrors.Newf(dErrors.CodeValidation, "box %d belongs to another office", box.Number)
			}
			if err := box.Capacity.CanAccept("box"); err != nil {
				m.metrics.IncCapacityRejected("box")
				return err
			}
		}

		number, err := m.allocator.NextFolderNumber(txCtx)
		if err != nil {
			return err
		}
		folder, err = models.NewFolder(id.FolderID(uuid.New()), req.OfficeID, box, number, capacity, now)
		if err != nil {
			return err
		}
		folder.CaseFileID = req.CaseFileID

		if box != nil {
			if box.Capacity.Place() {
				box.Capacity.Close(now, "")
			}
			if err := m.store.UpdateBox(txCtx, box); err != nil {
				return translate(err, "box")
			}
		}
		if err := m.store.CreateFolder(txCtx, folder); err != nil {
			return translate(err, "folder")
		}
		return m.emit(txCtx, audit.EventFolderCreated, audit.EntityFolder, folder.ID.String(),
			fmt.Sprintf("folder %d created", folder.Number))
	})
	if err != nil {
		return nil, err
	}
	m.metrics.IncContainerCreated("folder")
	return folder, nil
}

// PlaceFolio takes one folio slot in a folder for a new document.
func (m *Manager) PlaceFolio(ctx context.Context, folderID id.FolderID) (*models.Folder, error) {
	var folder *models.Folder
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		folder, err = m.store.GetFolderForUpdate(txCtx, folderID)
		if err != nil {
			return translate(err, "folder")
		}
		if err := folder.Capacity.CanAccept("folder"); err != nil {
			m.metrics.IncCapacityRejected("folder")
			return err
		}
		if folder.Capacity.Place() {
			folder.Capacity.Close(requestcontext.Now(txCtx), "")
		}
		return translate(m.store.UpdateFolder(txCtx, folder), "folder")
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// GetOrCreateActivePackage returns the open package, opening one if none is.
func (m *Manager) GetOrCreateActivePackage(ctx context.Context) (*models.Package, error) {
	var pkg *models.Package
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := m.store.LockPackages(txCtx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock packages")
		}
		var err error
		pkg, err = m.store.GetOpenPackage(txCtx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load open package")
		}
		pkg, err = m.openNextPackage(txCtx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// openNextPackage must run under the package lock.
func (m *Manager) openNextPackage(ctx context.Context) (*models.Package, error) {
	number, err := m.allocator.NextPackageNumber(ctx)
	if err != nil {
		return nil, err
	}
	pkg, err := models.NewPackage(id.PackageID(uuid.New()), number, m.defaults.PackageCapacityDefault, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := m.store.CreatePackage(ctx, pkg); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "another package is already open")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open package")
	}
	if err := m.emit(ctx, audit.EventPackageOpened, audit.EntityPackage, pkg.ID.String(),
		"package "+pkg.Number+" opened"); err != nil {
		return nil, err
	}
	m.metrics.IncContainerCreated("package")
	return pkg, nil
}

type AssignRequest struct {
	CaseFileID id.CaseFileID
	PackageID  id.PackageID
	MarkFull   bool
	Notes      string
}

// AssignResult carries the package after the assignment and, when the
// assignment closed it, the successor that was opened.
type AssignResult struct {
	Package *models.Package `json:"package"`
	Next    *models.Package `json:"next_package,omitempty"`
}

// AssignCaseFileToPackage places a case file in a package. The package
// closes when the assignment fills it or MarkFull is set, and the next
// package opens in the same transaction.
func (m *Manager) AssignCaseFileToPackage(ctx context.Context, req AssignRequest) (*AssignResult, error) {
	var result AssignResult
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := m.store.LockPackages(txCtx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock packages")
		}
		pkg, err := m.store.GetPackageForUpdate(txCtx, req.PackageID)
		if err != nil {
			return translate(err, "package")
		}
		cf, err := m.store.GetCaseFileForUpdate(txCtx, req.CaseFileID)
		if err != nil {
			return translate(err, "case file")
		}

		switch {
		case pkg.Capacity.Occupancy >= pkg.Capacity.Limit:
			m.metrics.IncCapacityRejected("package")
			return dErrors.Newf(dErrors.CodeCapacityExceeded, "package %s is full (%d/%d)",
				pkg.Number, pkg.Capacity.Occupancy, pkg.Capacity.Limit)
		case pkg.Capacity.State != models.ContainerOpen:
			return dErrors.Newf(dErrors.CodeInvalidState, "package %s is not open", pkg.Number)
		case cf.PackageID != nil:
			return dErrors.Newf(dErrors.CodeAlreadyAssigned, "case file %s is already in a package", cf.Code)
		}

		now := requestcontext.Now(txCtx)
		if err := m.store.SetCaseFilePackage(txCtx, cf.ID, pkg.ID, now); err != nil {
			return translate(err, "case file")
		}
		filled := pkg.Capacity.Place()
		if filled || req.MarkFull {
			pkg.Capacity.Close(now, req.Notes)
		}
		if err := m.store.UpdatePackage(txCtx, pkg); err != nil {
			return translate(err, "package")
		}
		result.Package = pkg

		if err := m.emit(txCtx, audit.EventPackageAssigned, audit.EntityPackage, pkg.ID.String(),
			fmt.Sprintf("case file %s assigned to package %s", cf.Code, pkg.Number)); err != nil {
			return err
		}
		if pkg.Capacity.State != models.ContainerFull {
			return nil
		}
		if err := m.emit(txCtx, audit.EventPackageClosed, audit.EntityPackage, pkg.ID.String(),
			closeDetails(pkg, req.Notes)); err != nil {
			return err
		}
		result.Next, err = m.openNextPackage(txCtx)
		return err
	})
	if err != nil {
		return nil, err
	}
	m.metrics.IncAssignment(result.Next != nil)
	return &result, nil
}

// ClosePackage marks an open package full and opens its successor.
func (m *Manager) ClosePackage(ctx context.Context, packageID id.PackageID, notes string) (*AssignResult, error) {
	var result AssignResult
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := m.store.LockPackages(txCtx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock packages")
		}
		pkg, err := m.store.GetPackageForUpdate(txCtx, packageID)
		if err != nil {
			return translate(err, "package")
		}
		if pkg.Capacity.State != models.ContainerOpen {
			return dErrors.Newf(dErrors.CodeInvalidState, "package %s is already closed", pkg.Number)
		}
		pkg.Capacity.Close(requestcontext.Now(txCtx), notes)
		if err := m.store.UpdatePackage(txCtx, pkg); err != nil {
			return translate(err, "package")
		}
		result.Package = pkg
		if err := m.emit(txCtx, audit.EventPackageClosed, audit.EntityPackage, pkg.ID.String(),
			closeDetails(pkg, notes)); err != nil {
			return err
		}
		result.Next, err = m.openNextPackage(txCtx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ReopenPackage returns a full package to service. It fails with
// CodeConflict while another package is open.
func (m *Manager) ReopenPackage(ctx context.Context, packageID id.PackageID) (*models.Package, error) {
	var pkg *models.Package
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := m.store.LockPackages(txCtx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock packages")
		}
		var err error
		pkg, err = m.store.GetPackageForUpdate(txCtx, packageID)
		if err != nil {
			return translate(err, "package")
		}
		if pkg.Capacity.State == models.ContainerOpen {
			return dErrors.Newf(dErrors.CodeInvalidState, "package %s is already open", pkg.Number)
		}
		open, err := m.store.GetOpenPackage(txCtx)
		switch {
		case err == nil:
			return dErrors.Newf(dErrors.CodeConflict, "package %s is open; close it before reopening %s", open.Number, pkg.Number)
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load open package")
		}
		pkg.Capacity.Reopen()
		if err := m.store.UpdatePackage(txCtx, pkg); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "another package is already open")
			}
			return translate(err, "package")
		}
		return m.emit(txCtx, audit.EventPackageReopened, audit.EntityPackage, pkg.ID.String(),
			"package "+pkg.Number+" reopened")
	})
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

func (m *Manager) GetPackage(ctx context.Context, packageID id.PackageID) (*models.Package, error) {
	pkg, err := m.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, translate(err, "package")
	}
	return pkg, nil
}

func (m *Manager) ListPackages(ctx context.Context, state models.ContainerState) ([]*models.Package, error) {
	switch state {
	case "", models.ContainerOpen, models.ContainerFull:
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown package state %q", state)
	}
	pkgs, err := m.store.ListPackages(ctx, state)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list packages")
	}
	return pkgs, nil
}

func (m *Manager) emit(ctx context.Context, action audit.AuditEvent, entityType, entityID, details string) error {
	if m.auditor == nil {
		return nil
	}
	err := m.auditor.Emit(ctx, audit.Event{
		Action:     string(action),
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func closeDetails(pkg *models.Package, notes string) string {
	details := fmt.Sprintf("package %s closed with %d/%d case files", pkg.Number, pkg.Capacity.Occupancy, pkg.Capacity.Limit)
	if notes != "" {
		details += ": " + notes
	}
	return details
}

// translate maps store sentinels to domain errors. Coded errors pass through.
func translate(err error, entity string) error {
	var coded *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", entity)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Newf(dErrors.CodeAlreadyAssigned, "%s is already assigned", entity)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Newf(dErrors.CodeConflict, "%s conflicts with an existing record", entity)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist "+entity)
	}
}
