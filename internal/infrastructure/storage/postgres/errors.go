package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cgl/internal/core/apperror"
)

// PostgreSQL error codes handled by MapError.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
)

// Suffix of the unique constraints guarding visible numbers
// (books_number_key, chapters_number_key, records_number_key).
const numberConstraintSuffix = "_number_key"

// MapError translates PostgreSQL errors into application errors. A unique
// violation on a visible-number constraint becomes a retryable number
// conflict; other unique violations are duplicates. Unknown errors are
// returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if strings.HasSuffix(pgErr.ConstraintName, numberConstraintSuffix) {
			return apperror.NewNumberConflict(strings.TrimSuffix(pgErr.ConstraintName, numberConstraintSuffix), "").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
		return apperror.NewDuplicate(pgErr.TableName, constraintField(pgErr.ConstraintName), "").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeForeignKeyViolation:
		return apperror.NewConflict("referenced entity does not exist or is still referenced").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeCheckViolation:
		return apperror.NewValidation("value violates a database constraint").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeSerialization:
		return apperror.NewConcurrentModification(pgErr.TableName, "").WithCause(err)
	}
	return err
}

// IsNoRows reports a missing row.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// constraintField guesses the column from names like "books_slug_key".
func constraintField(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
