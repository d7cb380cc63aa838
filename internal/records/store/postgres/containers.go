package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
)

const (
	boxColumns     = `id, office_id, number, shelf, module, tier, capacity, occupancy, state, closed_at, notes, created_at`
	folderColumns  = `id, office_id, box_id, case_file_id, number, shelf, module, tier, capacity, occupancy, state, closed_at, notes, created_at`
	packageColumns = `id, number, capacity, occupancy, state, closed_at, notes, created_at`

	// packagesLockKey serializes every write to the package aggregate, so
	// rollover never races a concurrent open.
	packagesLockKey int64 = 0x5041434b41474553
)

func scanBox(row rowScanner) (*models.Box, error) {
	var (
		b             models.Box
		raw, officeID uuid.UUID
		state         string
	)
	if err := row.Scan(&raw, &officeID, &b.Number, &b.Location.Shelf, &b.Location.Module, &b.Location.Tier,
		&b.Capacity.Limit, &b.Capacity.Occupancy, &state, &b.Capacity.ClosedAt, &b.Capacity.Notes, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.ID = id.BoxID(raw)
	b.OfficeID = id.OfficeID(officeID)
	b.Capacity.State = models.ContainerState(state)
	return &b, nil
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var (
		f               models.Folder
		raw, officeID   uuid.UUID
		boxID, caseFile uuid.NullUUID
		state           string
	)
	if err := row.Scan(&raw, &officeID, &boxID, &caseFile, &f.Number, &f.Location.Shelf, &f.Location.Module, &f.Location.Tier,
		&f.Capacity.Limit, &f.Capacity.Occupancy, &state, &f.Capacity.ClosedAt, &f.Capacity.Notes, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.ID = id.FolderID(raw)
	f.OfficeID = id.OfficeID(officeID)
	f.BoxID = fromNullUUID[id.BoxID](boxID)
	f.CaseFileID = fromNullUUID[id.CaseFileID](caseFile)
	f.Capacity.State = models.ContainerState(state)
	return &f, nil
}

func scanPackage(row rowScanner) (*models.Package, error) {
	var (
		p     models.Package
		raw   uuid.UUID
		state string
	)
	if err := row.Scan(&raw, &p.Number, &p.Capacity.Limit, &p.Capacity.Occupancy, &state,
		&p.Capacity.ClosedAt, &p.Capacity.Notes, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PackageID(raw)
	p.Capacity.State = models.ContainerState(state)
	return &p, nil
}

// Boxes

func (s *Store) CreateBox(ctx context.Context, b *models.Box) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO boxes (`+boxColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, uuid.UUID(b.ID), uuid.UUID(b.OfficeID), b.Number, b.Location.Shelf, b.Location.Module, b.Location.Tier,
		b.Capacity.Limit, b.Capacity.Occupancy, string(b.Capacity.State), b.Capacity.ClosedAt, b.Capacity.Notes, b.CreatedAt)
	return translate(err, "insert box")
}

func (s *Store) GetBox(ctx context.Context, boxID id.BoxID) (*models.Box, error) {
	b, err := scanBox(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+boxColumns+` FROM boxes WHERE id = $1`, uuid.UUID(boxID)))
	if err != nil {
		return nil, translate(err, "get box")
	}
	return b, nil
}

func (s *Store) GetBoxForUpdate(ctx context.Context, boxID id.BoxID) (*models.Box, error) {
	exec, err := s.lockingExecer(ctx)
	if err != nil {
		return nil, err
	}
	b, err := scanBox(exec.QueryRowContext(ctx,
		`SELECT `+boxColumns+` FROM boxes WHERE id = $1 FOR UPDATE`, uuid.UUID(boxID)))
	if err != nil {
		return nil, translate(err, "lock box")
	}
	return b, nil
}

func (s *Store) UpdateBox(ctx context.Context, b *models.Box) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE boxes SET shelf = $2, module = $3, tier = $4, occupancy = $5, state = $6, closed_at = $7, notes = $8
		WHERE id = $1
	`, uuid.UUID(b.ID), b.Location.Shelf, b.Location.Module, b.Location.Tier,
		b.Capacity.Occupancy, string(b.Capacity.State), b.Capacity.ClosedAt, b.Capacity.Notes)
	if err != nil {
		return translate(err, "update box")
	}
	return expectOne(res, "update box")
}

func (s *Store) ListBoxes(ctx context.Context, office id.OfficeID) ([]*models.Box, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+boxColumns+` FROM boxes WHERE office_id = $1 ORDER BY number`, uuid.UUID(office))
	if err != nil {
		return nil, translate(err, "list boxes")
	}
	defer rows.Close()

	var out []*models.Box
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Folders

func (s *Store) CreateFolder(ctx context.Context, f *models.Folder) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO folders (`+folderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, uuid.UUID(f.ID), uuid.UUID(f.OfficeID), nullableID(f.BoxID), nullableID(f.CaseFileID), f.Number,
		f.Location.Shelf, f.Location.Module, f.Location.Tier,
		f.Capacity.Limit, f.Capacity.Occupancy, string(f.Capacity.State), f.Capacity.ClosedAt, f.Capacity.Notes, f.CreatedAt)
	return translate(err, "insert folder")
}

func (s *Store) GetFolder(ctx context.Context, folderID id.FolderID) (*models.Folder, error) {
	f, err := scanFolder(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1`, uuid.UUID(folderID)))
	if err != nil {
		return nil, translate(err, "get folder")
	}
	return f, nil
}

func (s *Store) GetFolderForUpdate(ctx context.Context, folderID id.FolderID) (*models.Folder, error) {
	exec, err := s.lockingExecer(ctx)
	if err != nil {
		return nil, err
	}
	f, err := scanFolder(exec.QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1 FOR UPDATE`, uuid.UUID(folderID)))
	if err != nil {
		return nil, translate(err, "lock folder")
	}
	return f, nil
}

func (s *Store) UpdateFolder(ctx context.Context, f *models.Folder) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE folders SET box_id = $2, case_file_id = $3, shelf = $4, module = $5, tier = $6,
			occupancy = $7, state = $8, closed_at = $9, notes = $10
		WHERE id = $1
	`, uuid.UUID(f.ID), nullableID(f.BoxID), nullableID(f.CaseFileID), f.Location.Shelf, f.Location.Module, f.Location.Tier,
		f.Capacity.Occupancy, string(f.Capacity.State), f.Capacity.ClosedAt, f.Capacity.Notes)
	if err != nil {
		return translate(err, "update folder")
	}
	return expectOne(res, "update folder")
}

// Packages

// LockPackages takes the transaction-scoped package aggregate lock.
func (s *Store) LockPackages(ctx context.Context) error {
	exec, err := s.lockingExecer(ctx)
	if err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, packagesLockKey); err != nil {
		return fmt.Errorf("lock packages: %w", err)
	}
	return nil
}

// CreatePackage inserts p. A second open package violates
// packages_single_open and surfaces as sentinel.ErrConflict.
func (s *Store) CreatePackage(ctx context.Context, p *models.Package) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO packages (`+packageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(p.ID), p.Number, p.Capacity.Limit, p.Capacity.Occupancy, string(p.Capacity.State),
		p.Capacity.ClosedAt, p.Capacity.Notes, p.CreatedAt)
	return translate(err, "insert package")
}

func (s *Store) GetPackage(ctx context.Context, packageID id.PackageID) (*models.Package, error) {
	p, err := scanPackage(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1`, uuid.UUID(packageID)))
	if err != nil {
		return nil, translate(err, "get package")
	}
	return p, nil
}

func (s *Store) GetPackageForUpdate(ctx context.Context, packageID id.PackageID) (*models.Package, error) {
	exec, err := s.lockingExecer(ctx)
	if err != nil {
		return nil, err
	}
	p, err := scanPackage(exec.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1 FOR UPDATE`, uuid.UUID(packageID)))
	if err != nil {
		return nil, translate(err, "lock package")
	}
	return p, nil
}

// GetOpenPackage returns the open package, or sentinel.ErrNotFound when
// none is open.
func (s *Store) GetOpenPackage(ctx context.Context) (*models.Package, error) {
	p, err := scanPackage(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE state = 'open'`))
	if err != nil {
		return nil, translate(err, "get open package")
	}
	return p, nil
}

func (s *Store) UpdatePackage(ctx context.Context, p *models.Package) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE packages SET occupancy = $2, state = $3, closed_at = $4, notes = $5
		WHERE id = $1
	`, uuid.UUID(p.ID), p.Capacity.Occupancy, string(p.Capacity.State), p.Capacity.ClosedAt, p.Capacity.Notes)
	if err != nil {
		return translate(err, "update package")
	}
	return expectOne(res, "update package")
}

// ListPackages returns packages newest first, optionally filtered by state.
func (s *Store) ListPackages(ctx context.Context, state models.ContainerState) ([]*models.Package, error) {
	var filter sql.NullString
	if state != "" {
		filter = sql.NullString{String: string(state), Valid: true}
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+packageColumns+` FROM packages
		WHERE $1::text IS NULL OR state = $1
		ORDER BY created_at DESC, length(number) DESC, number DESC
	`, filter)
	if err != nil {
		return nil, translate(err, "list packages")
	}
	defer rows.Close()

	var out []*models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
