package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuluyhansozen/Lexical-sub002/internal/store"
)

// PostgreSQL error codes.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations.
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations.
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations.
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not-null constraint violations.
	notNullViolationCode = "23502"
)

// MapError translates database-specific errors to domain-specific store errors.
// It examines the provided error and returns an appropriate store error type,
// or the original error if no specific mapping applies.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	// Check for "no rows" error, which we map to entity-specific not found errors
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	// Try to convert to PostgreSQL-specific error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.Detail)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: %s", store.ErrInvalidEntity, pgErr.Detail)
		case checkViolationCode, notNullViolationCode:
			return fmt.Errorf("%w: %s", store.ErrInvalidEntity, pgErr.Detail)
		}
	}

	// Return original error if no specific mapping applies
	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint
// violation. Optionally, a constraint name can be provided to check for a
// violation of that specific constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		if constraintName == "" {
			return true
		}
		return pgErr.ConstraintName == constraintName
	}
	return false
}
