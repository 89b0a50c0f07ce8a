package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/loca-mat/service-rental/internal/domain"
)

// PostgreSQL error codes the store boundary understands.
const (
	pgForeignKeyViolation   = "23503"
	pgUniqueViolation       = "23505"
	pgCheckViolation        = "23514"
	pgRaiseException        = "P0001" // raised by the status-transition trigger
	pgSerializationFailure  = "40001"
	pgDeadlockDetected      = "40P01"
	pgLockNotAvailable      = "55P03" // lock_timeout expired
	pgQueryCanceled         = "57014"
	pgConnectionClassPrefix = "08"
)

// translateError maps low-level store errors to domain error kinds so the
// coordinators never branch on driver types. Errors that are already domain
// errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgForeignKeyViolation,
			pgErr.Code == pgUniqueViolation,
			pgErr.Code == pgCheckViolation,
			pgErr.Code == pgRaiseException:
			return domain.NewIntegrityError(pgErr.ConstraintName, pgErr.Message).WithCause(err)

		case pgErr.Code == pgDeadlockDetected,
			pgErr.Code == pgSerializationFailure:
			return domain.NewConflictError("transaction aborted by the store, retry the operation").WithCause(err)

		case pgErr.Code == pgLockNotAvailable,
			pgErr.Code == pgQueryCanceled:
			return domain.NewUnavailableError("timed out waiting for a row lock").WithCause(err)

		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgConnectionClassPrefix:
			return domain.NewUnavailableError("database connection failure").WithCause(err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewUnavailableError("database operation cancelled").WithCause(err)
	}

	return domain.NewUnavailableError("database operation failed").WithCause(err)
}
