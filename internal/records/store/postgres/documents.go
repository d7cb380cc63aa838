package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
)

const documentColumns = `id, case_file_id, number, folio, title, document_date, created_by, created_at`

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		d                models.Document
		raw, caseFileRaw uuid.UUID
	)
	if err := row.Scan(&raw, &caseFileRaw, &d.Number, &d.Folio, &d.Title, &d.DocumentDate, &d.CreatedBy, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.ID = id.DocumentID(raw)
	d.CaseFileID = id.CaseFileID(caseFileRaw)
	return &d, nil
}

func (s *Store) CreateDocument(ctx context.Context, d *models.Document) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(d.ID), uuid.UUID(d.CaseFileID), d.Number, d.Folio, d.Title, d.DocumentDate, d.CreatedBy, d.CreatedAt)
	return translate(err, "insert document")
}

func (s *Store) ListDocuments(ctx context.Context, caseFileID id.CaseFileID) ([]*models.Document, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE case_file_id = $1 ORDER BY folio`, uuid.UUID(caseFileID))
	if err != nil {
		return nil, translate(err, "list documents")
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MaxFolio returns the highest folio filed in the case file, 0 when empty.
// Callers hold the case file row lock.
func (s *Store) MaxFolio(ctx context.Context, caseFileID id.CaseFileID) (int, error) {
	var folio int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(MAX(folio), 0) FROM documents WHERE case_file_id = $1`, uuid.UUID(caseFileID)).Scan(&folio)
	if err != nil {
		return 0, translate(err, "max folio")
	}
	return folio, nil
}
