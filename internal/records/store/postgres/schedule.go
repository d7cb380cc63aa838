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
	seriesColumns    = `id, code, name, management_retention_years, central_retention_years, final_disposition, requires_subseries, created_at`
	subseriesColumns = `id, series_id, code, name, management_retention_years, central_retention_years, final_disposition, created_at`
)

func scanSeries(row rowScanner) (*models.Series, error) {
	var (
		s           models.Series
		raw         uuid.UUID
		disposition string
	)
	if err := row.Scan(&raw, &s.Code, &s.Name, &s.ManagementRetentionYears, &s.CentralRetentionYears,
		&disposition, &s.RequiresSubseries, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.ID = id.SeriesID(raw)
	s.FinalDisposition = models.FinalDisposition(disposition)
	return &s, nil
}

func scanSubseries(row rowScanner) (*models.Subseries, error) {
	var (
		s                models.Subseries
		raw, seriesID    uuid.UUID
		mgmt, central    sql.NullInt32
		finalDisposition sql.NullString
	)
	if err := row.Scan(&raw, &seriesID, &s.Code, &s.Name, &mgmt, &central, &finalDisposition, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.ID = id.SubseriesID(raw)
	s.SeriesID = id.SeriesID(seriesID)
	if mgmt.Valid {
		v := int(mgmt.Int32)
		s.ManagementRetentionYears = &v
	}
	if central.Valid {
		v := int(central.Int32)
		s.CentralRetentionYears = &v
	}
	if finalDisposition.Valid {
		d := models.FinalDisposition(finalDisposition.String)
		s.FinalDisposition = &d
	}
	return &s, nil
}

func (s *Store) CreateSeries(ctx context.Context, series *models.Series) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO series (`+seriesColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(series.ID), series.Code, series.Name, series.ManagementRetentionYears,
		series.CentralRetentionYears, string(series.FinalDisposition), series.RequiresSubseries, series.CreatedAt)
	return translate(err, "insert series")
}

func (s *Store) GetSeries(ctx context.Context, seriesID id.SeriesID) (*models.Series, error) {
	series, err := scanSeries(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE id = $1`, uuid.UUID(seriesID)))
	if err != nil {
		return nil, translate(err, "get series")
	}
	return series, nil
}

func (s *Store) GetSeriesByCode(ctx context.Context, code string) (*models.Series, error) {
	series, err := scanSeries(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE code = $1`, code))
	if err != nil {
		return nil, translate(err, "get series by code")
	}
	return series, nil
}

func (s *Store) ListSeries(ctx context.Context) ([]*models.Series, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT `+seriesColumns+` FROM series ORDER BY code`)
	if err != nil {
		return nil, translate(err, "list series")
	}
	defer rows.Close()

	var out []*models.Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		out = append(out, series)
	}
	return out, rows.Err()
}

func optionalDisposition(d *models.FinalDisposition) any {
	if d == nil {
		return nil
	}
	return string(*d)
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *Store) CreateSubseries(ctx context.Context, sub *models.Subseries) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO subseries (`+subseriesColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(sub.ID), uuid.UUID(sub.SeriesID), sub.Code, sub.Name,
		optionalInt(sub.ManagementRetentionYears), optionalInt(sub.CentralRetentionYears),
		optionalDisposition(sub.FinalDisposition), sub.CreatedAt)
	return translate(err, "insert subseries")
}

func (s *Store) GetSubseries(ctx context.Context, subseriesID id.SubseriesID) (*models.Subseries, error) {
	sub, err := scanSubseries(s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+subseriesColumns+` FROM subseries WHERE id = $1`, uuid.UUID(subseriesID)))
	if err != nil {
		return nil, translate(err, "get subseries")
	}
	return sub, nil
}

func (s *Store) ListSubseries(ctx context.Context, seriesID id.SeriesID) ([]*models.Subseries, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+subseriesColumns+` FROM subseries WHERE series_id = $1 ORDER BY code`, uuid.UUID(seriesID))
	if err != nil {
		return nil, translate(err, "list subseries")
	}
	defer rows.Close()

	var out []*models.Subseries
	for rows.Next() {
		sub, err := scanSubseries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subseries: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
