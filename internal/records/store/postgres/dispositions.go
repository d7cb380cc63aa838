package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
)

const dispositionColumns = `id, case_file_id, track, deadline, action, disposition, outcome, operator, notes, created_at`

func (s *Store) CreateDispositionRecord(ctx context.Context, r *models.DispositionRecord) error {
	var deadline any
	if !r.Deadline.IsZero() {
		deadline = r.Deadline
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO disposition_records (`+dispositionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uuid.UUID(r.ID), uuid.UUID(r.CaseFileID), string(r.Track), deadline, string(r.Action),
		string(r.Disposition), string(r.Outcome), r.Operator, r.Notes, r.CreatedAt)
	return translate(err, "insert disposition record")
}

func (s *Store) ListDispositionRecords(ctx context.Context, caseFileID id.CaseFileID) ([]*models.DispositionRecord, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+dispositionColumns+` FROM disposition_records
		WHERE case_file_id = $1
		ORDER BY created_at
	`, uuid.UUID(caseFileID))
	if err != nil {
		return nil, translate(err, "list disposition records")
	}
	defer rows.Close()

	var out []*models.DispositionRecord
	for rows.Next() {
		var (
			r                                   models.DispositionRecord
			raw, caseFileRaw                    uuid.UUID
			track, action, disposition, outcome string
			deadline                            *time.Time
		)
		if err := rows.Scan(&raw, &caseFileRaw, &track, &deadline, &action, &disposition, &outcome,
			&r.Operator, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan disposition record: %w", err)
		}
		r.ID = id.DispositionID(raw)
		r.CaseFileID = id.CaseFileID(caseFileRaw)
		r.Track = models.Track(track)
		r.Action = models.DispositionAction(action)
		r.Disposition = models.FinalDisposition(disposition)
		r.Outcome = models.Outcome(outcome)
		if deadline != nil {
			r.Deadline = *deadline
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// SaveSnapshot archives the metadata of a case file about to be destroyed.
func (s *Store) SaveSnapshot(ctx context.Context, snap *models.CaseFileSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO case_file_snapshots (id, case_file_id, taken_at, taken_by, payload)
		VALUES ($1, $2, $3, $4, $5::jsonb)
	`, uuid.New(), uuid.UUID(snap.CaseFileID), snap.TakenAt, snap.TakenBy, string(payload))
	return translate(err, "insert snapshot")
}

// GetSnapshot returns the latest snapshot of a case file.
func (s *Store) GetSnapshot(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFileSnapshot, error) {
	var payload []byte
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT payload FROM case_file_snapshots
		WHERE case_file_id = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`, uuid.UUID(caseFileID)).Scan(&payload)
	if err != nil {
		return nil, translate(err, "get snapshot")
	}
	var snap models.CaseFileSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
