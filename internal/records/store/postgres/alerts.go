package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
)

const alertColumns = `id, case_file_id, kind, raised_on, deadline, read, read_at`

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		a                models.Alert
		raw, caseFileRaw uuid.UUID
		kind             string
	)
	if err := row.Scan(&raw, &caseFileRaw, &kind, &a.RaisedOn, &a.Deadline, &a.Read, &a.ReadAt); err != nil {
		return nil, err
	}
	a.ID = id.AlertID(raw)
	a.CaseFileID = id.CaseFileID(caseFileRaw)
	a.Kind = models.AlertKind(kind)
	return &a, nil
}

// InsertAlertIfAbsent stores a unless an alert with the same case file, kind
// and deadline exists. It reports whether a row was written.
func (s *Store) InsertAlertIfAbsent(ctx context.Context, a *models.Alert) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO retention_alerts (`+alertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (case_file_id, kind, deadline) DO NOTHING
	`, uuid.UUID(a.ID), uuid.UUID(a.CaseFileID), string(a.Kind), a.RaisedOn, a.Deadline, a.Read, a.ReadAt)
	if err != nil {
		return false, translate(err, "insert alert")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert alert rows affected: %w", err)
	}
	return n > 0, nil
}

// ListAlerts returns alerts newest first. unreadOnly hides acknowledged ones.
func (s *Store) ListAlerts(ctx context.Context, unreadOnly bool, limit int) ([]*models.Alert, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+alertColumns+` FROM retention_alerts
		WHERE NOT $1 OR NOT read
		ORDER BY raised_on DESC, deadline
		LIMIT $2
	`, unreadOnly, limit)
	if err != nil {
		return nil, translate(err, "list alerts")
	}
	defer rows.Close()

	var out []*models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkAlertRead acknowledges an alert. Acknowledging twice keeps the first
// read time.
func (s *Store) MarkAlertRead(ctx context.Context, alertID id.AlertID, at time.Time) (*models.Alert, error) {
	a, err := scanAlert(s.execer(ctx).QueryRowContext(ctx, `
		UPDATE retention_alerts SET read = TRUE, read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING `+alertColumns, uuid.UUID(alertID), at))
	if err != nil {
		return nil, translate(err, "mark alert read")
	}
	return a, nil
}

