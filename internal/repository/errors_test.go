package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/loca-mat/service-rental/internal/domain"
)

func TestTranslateErrorNil(t *testing.T) {
	assert.NoError(t, translateError(nil))
}

func TestTranslateErrorPassesThroughDomainErrors(t *testing.T) {
	original := domain.NewNotFoundError("item", "42")
	assert.Equal(t, original, translateError(original))
}

func TestTranslateErrorPgCodes(t *testing.T) {
	cases := []struct {
		name string
		code string
		kind domain.ErrorKind
	}{
		{"foreign key violation", pgForeignKeyViolation, domain.KindIntegrity},
		{"unique violation", pgUniqueViolation, domain.KindIntegrity},
		{"check violation", pgCheckViolation, domain.KindIntegrity},
		{"trigger exception", pgRaiseException, domain.KindIntegrity},
		{"deadlock", pgDeadlockDetected, domain.KindConflict},
		{"serialization failure", pgSerializationFailure, domain.KindConflict},
		{"lock timeout", pgLockNotAvailable, domain.KindUnavailable},
		{"query canceled", pgQueryCanceled, domain.KindUnavailable},
		{"connection failure", "08006", domain.KindUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tc.code, Message: tc.name, ConstraintName: "some_constraint"}
			translated := translateError(pgErr)
			assert.Equal(t, tc.kind, domain.KindOf(translated))
			assert.ErrorIs(t, translated, pgErr, "cause must stay unwrappable")
		})
	}
}

func TestTranslateErrorKeepsConstraintName(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "contract_links_item_id_fkey"}
	translated := translateError(pgErr)

	var de *domain.Error
	assert.ErrorAs(t, translated, &de)
	assert.Equal(t, "contract_links_item_id_fkey", de.Constraint)
}

func TestTranslateErrorContextCancellation(t *testing.T) {
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(translateError(context.Canceled)))
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(translateError(context.DeadlineExceeded)))
}

func TestTranslateErrorUnknown(t *testing.T) {
	translated := translateError(errors.New("connection reset by peer"))
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(translated))
}
