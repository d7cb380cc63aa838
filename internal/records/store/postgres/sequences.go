package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"archivist/internal/records/models"
)

// Increment advances the named counter and returns its new value. A counter
// seen for the first time is seeded from the highest value already stored in
// its backing table, so numbering continues across a fresh counters table.
// Concurrent first increments serialize on the counter's primary key.
func (s *Store) Increment(ctx context.Context, c models.Counter) (int64, error) {
	exec := s.execer(ctx)
	name := c.Name()

	var value int64
	err := exec.QueryRowContext(ctx, `
		UPDATE sequence_counters SET value = value + 1, updated_at = NOW()
		WHERE name = $1
		RETURNING value
	`, name).Scan(&value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("increment %s: %w", name, err)
	}

	seed, err := s.seed(ctx, exec, c)
	if err != nil {
		return 0, err
	}
	err = exec.QueryRowContext(ctx, `
		INSERT INTO sequence_counters (name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1, updated_at = NOW()
		RETURNING value
	`, name, seed+1).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", name, err)
	}
	return value, nil
}

func (s *Store) seed(ctx context.Context, exec dbExecutor, c models.Counter) (int64, error) {
	var (
		query string
		args  []any
	)
	switch c.Kind {
	case models.CounterDocument:
		query = `SELECT COUNT(*) FROM documents WHERE number LIKE $1`
		args = []any{c.DayPrefix + "-%"}
	case models.CounterCaseFile:
		query = `SELECT COALESCE(MAX(code::bigint), 0) FROM case_files WHERE code ~ '^[0-9]+$'`
	case models.CounterFolder:
		query = `SELECT COALESCE(MAX(number), 0) FROM folders`
	case models.CounterPackage:
		query = `SELECT COALESCE(MAX(number::bigint), 0) FROM packages WHERE number ~ '^[0-9]+$'`
	case models.CounterBox:
		query = `SELECT COALESCE(MAX(number), 0) FROM boxes WHERE office_id = $1`
		args = []any{uuid.UUID(c.Office)}
	default:
		return 0, fmt.Errorf("unknown counter kind %q", c.Kind)
	}
	var seed int64
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&seed); err != nil {
		return 0, fmt.Errorf("seed %s: %w", c.Name(), err)
	}
	return seed, nil
}
