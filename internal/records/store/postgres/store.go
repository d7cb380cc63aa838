// Package postgres persists the records domain: retention schedule, case
// files, documents, containers, counters, alerts and the disposition ledger.
//
// Methods run in the transaction carried by ctx when there is one. Methods
// whose name ends in ForUpdate take row locks and require a transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	pgplatform "archivist/internal/platform/postgres"
	"archivist/pkg/platform/sentinel"
	txcontext "archivist/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) lockingExecer(ctx context.Context) (dbExecutor, error) {
	tx, ok := txcontext.From(ctx)
	if !ok {
		return nil, sentinel.ErrNoTx
	}
	return tx, nil
}

// translate maps driver errors onto store sentinels.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	case pgplatform.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, sentinel.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

func nullableID[T ~[16]byte](v *T) any {
	if v == nil {
		return nil
	}
	return uuid.UUID(*v)
}

func fromNullUUID[T ~[16]byte](v uuid.NullUUID) *T {
	if !v.Valid {
		return nil
	}
	t := T(v.UUID)
	return &t
}

func uuidStrings[T ~[16]byte](ids []T) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = uuid.UUID(v).String()
	}
	return out
}
