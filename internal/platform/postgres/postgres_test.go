package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/archivist?sslmode=disable", MigrateURL("postgres://u:p@db:5432/archivist?sslmode=disable"))
	assert.Equal(t, "pgx5://db/archivist", MigrateURL("postgresql://db/archivist"))
	assert.Equal(t, "pgx5://db/archivist", MigrateURL("pgx5://db/archivist"))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert package: %w", &pgconn.PgError{Code: "23505", ConstraintName: "packages_single_open"})

	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(err, "packages_single_open"))
	assert.False(t, IsUniqueViolation(err, "packages_number_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
