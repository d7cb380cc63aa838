package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	"archivist/pkg/platform/sentinel"
)

const caseFileColumns = `id, code, name, office_id, series_id, subseries_id, support_type,
	opening_date, closing_date, first_document_date, retention_start_date, management_end_date, central_end_date,
	lifecycle_phase, administrative_status, availability, folder_id, package_id, custom_fields,
	opening_date_overridden, created_by, created_at, updated_at`

func scanCaseFile(row rowScanner) (*models.CaseFile, error) {
	var (
		cf                             models.CaseFile
		caseFileID, officeID, seriesID uuid.UUID
		subseriesID, folderID, pkgID   uuid.NullUUID
		support, phase, status, avail  string
		customFields                   []byte
	)
	err := row.Scan(
		&caseFileID, &cf.Code, &cf.Name, &officeID, &seriesID, &subseriesID, &support,
		&cf.OpeningDate, &cf.ClosingDate, &cf.FirstDocumentDate, &cf.RetentionStartDate, &cf.ManagementEndDate, &cf.CentralEndDate,
		&phase, &status, &avail, &folderID, &pkgID, &customFields,
		&cf.OpeningDateOverridden, &cf.CreatedBy, &cf.CreatedAt, &cf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	cf.ID = id.CaseFileID(caseFileID)
	cf.OfficeID = id.OfficeID(officeID)
	cf.SeriesID = id.SeriesID(seriesID)
	cf.SubseriesID = fromNullUUID[id.SubseriesID](subseriesID)
	cf.FolderID = fromNullUUID[id.FolderID](folderID)
	cf.PackageID = fromNullUUID[id.PackageID](pkgID)
	cf.Support = models.SupportType(support)
	cf.Phase = models.Phase(phase)
	cf.Status = models.AdministrativeStatus(status)
	cf.Availability = models.Availability(avail)
	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &cf.CustomFields); err != nil {
			return nil, fmt.Errorf("decode custom fields: %w", err)
		}
	}
	return &cf, nil
}

func encodeCustomFields(fields []models.CustomField) (string, error) {
	if len(fields) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode custom fields: %w", err)
	}
	return string(b), nil
}

func (s *Store) CreateCaseFile(ctx context.Context, cf *models.CaseFile) error {
	fields, err := encodeCustomFields(cf.CustomFields)
	if err != nil {
		return err
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO case_files (`+caseFileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19::jsonb, $20, $21, $22, $23)
	`,
		uuid.UUID(cf.ID), cf.Code, cf.Name, uuid.UUID(cf.OfficeID), uuid.UUID(cf.SeriesID), nullableID(cf.SubseriesID), string(cf.Support),
		cf.OpeningDate, cf.ClosingDate, cf.FirstDocumentDate, cf.RetentionStartDate, cf.ManagementEndDate, cf.CentralEndDate,
		string(cf.Phase), string(cf.Status), string(cf.Availability), nullableID(cf.FolderID), nullableID(cf.PackageID), fields,
		cf.OpeningDateOverridden, cf.CreatedBy, cf.CreatedAt, cf.UpdatedAt,
	)
	return translate(err, "insert case file")
}

func (s *Store) GetCaseFile(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error) {
	cf, err := scanCaseFile(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+caseFileColumns+` FROM case_files WHERE id = $1`, uuid.UUID(caseFileID)))
	if err != nil {
		return nil, translate(err, "get case file")
	}
	return cf, nil
}

func (s *Store) GetCaseFileForUpdate(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error) {
	exec, err := s.lockingExecer(ctx)
	if err != nil {
		return nil, err
	}
	cf, err := scanCaseFile(exec.QueryRowContext(ctx,
		`SELECT `+caseFileColumns+` FROM case_files WHERE id = $1 FOR UPDATE`, uuid.UUID(caseFileID)))
	if err != nil {
		return nil, translate(err, "lock case file")
	}
	return cf, nil
}

// UpdateCaseFile writes every mutable column of cf.
func (s *Store) UpdateCaseFile(ctx context.Context, cf *models.CaseFile) error {
	fields, err := encodeCustomFields(cf.CustomFields)
	if err != nil {
		return err
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE case_files SET
			name = $2,
			closing_date = $3,
			first_document_date = $4,
			retention_start_date = $5,
			management_end_date = $6,
			central_end_date = $7,
			lifecycle_phase = $8,
			administrative_status = $9,
			availability = $10,
			folder_id = $11,
			package_id = $12,
			custom_fields = $13::jsonb,
			updated_at = $14
		WHERE id = $1
	`,
		uuid.UUID(cf.ID), cf.Name, cf.ClosingDate, cf.FirstDocumentDate, cf.RetentionStartDate,
		cf.ManagementEndDate, cf.CentralEndDate, string(cf.Phase), string(cf.Status), string(cf.Availability),
		nullableID(cf.FolderID), nullableID(cf.PackageID), fields, cf.UpdatedAt,
	)
	if err != nil {
		return translate(err, "update case file")
	}
	return expectOne(res, "update case file")
}

// SaveLifecycle writes only the columns the retention engine owns, so a
// batch never overwrites operator edits to other columns.
func (s *Store) SaveLifecycle(ctx context.Context, cf *models.CaseFile) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE case_files SET
			first_document_date = $2,
			retention_start_date = $3,
			management_end_date = $4,
			central_end_date = $5,
			lifecycle_phase = $6,
			administrative_status = $7,
			updated_at = $8
		WHERE id = $1
	`,
		uuid.UUID(cf.ID), cf.FirstDocumentDate, cf.RetentionStartDate, cf.ManagementEndDate,
		cf.CentralEndDate, string(cf.Phase), string(cf.Status), cf.UpdatedAt,
	)
	if err != nil {
		return translate(err, "save lifecycle")
	}
	return expectOne(res, "save lifecycle")
}

// SetCaseFilePackage links a case file to a package. It fails with
// sentinel.ErrAlreadyUsed when the case file already has one.
func (s *Store) SetCaseFilePackage(ctx context.Context, caseFileID id.CaseFileID, packageID id.PackageID, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE case_files SET package_id = $2, updated_at = $3
		WHERE id = $1 AND package_id IS NULL
	`, uuid.UUID(caseFileID), uuid.UUID(packageID), now)
	if err != nil {
		return translate(err, "set case file package")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set case file package rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set case file package: %w", sentinel.ErrAlreadyUsed)
	}
	return nil
}

// ListForRetention locks and returns the next page of case files the
// retention engine still evaluates, ordered by id after the given cursor.
func (s *Store) ListForRetention(ctx context.Context, after id.CaseFileID, limit int) ([]*models.CaseFile, error) {
	exec, err := s.lockingExecer(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.QueryContext(ctx, `
		SELECT `+caseFileColumns+`
		FROM case_files
		WHERE administrative_status NOT IN ('conserved', 'destroyed') AND id > $1
		ORDER BY id
		LIMIT $2
		FOR UPDATE
	`, uuid.UUID(after), limit)
	if err != nil {
		return nil, translate(err, "list case files for retention")
	}
	defer rows.Close()

	var out []*models.CaseFile
	for rows.Next() {
		cf, err := scanCaseFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case file: %w", err)
		}
		out = append(out, cf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case files: %w", err)
	}
	return out, nil
}

// FindOpenWithCustomField returns the active case files of office carrying
// field name with value.
func (s *Store) FindOpenWithCustomField(ctx context.Context, office id.OfficeID, name, value string) ([]id.CaseFileID, error) {
	probe, err := json.Marshal([]map[string]string{{"name": name, "value": value}})
	if err != nil {
		return nil, fmt.Errorf("encode custom field probe: %w", err)
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id FROM case_files
		WHERE office_id = $1 AND administrative_status = 'active' AND custom_fields @> $2::jsonb
		ORDER BY created_at
	`, uuid.UUID(office), string(probe))
	if err != nil {
		return nil, translate(err, "find custom field duplicates")
	}
	defer rows.Close()

	var out []id.CaseFileID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan case file id: %w", err)
		}
		out = append(out, id.CaseFileID(raw))
	}
	return out, rows.Err()
}

// EarliestDocumentDates returns the earliest linked document date of each
// case file in ids that has at least one document.
func (s *Store) EarliestDocumentDates(ctx context.Context, ids []id.CaseFileID) (map[id.CaseFileID]time.Time, error) {
	out := make(map[id.CaseFileID]time.Time)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT case_file_id, MIN(document_date)
		FROM documents
		WHERE case_file_id = ANY($1::uuid[])
		GROUP BY case_file_id
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, translate(err, "earliest document dates")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			raw uuid.UUID
			day time.Time
		)
		if err := rows.Scan(&raw, &day); err != nil {
			return nil, fmt.Errorf("scan earliest document date: %w", err)
		}
		out[id.CaseFileID(raw)] = day
	}
	return out, rows.Err()
}
