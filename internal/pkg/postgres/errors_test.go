package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsSerializationFailure(fmt.Errorf("commit tx: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("boom")))
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "orders_tenant_idempotency_key"}
	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "orders_tenant_idempotency_key"))
	assert.False(t, IsUniqueViolation(err, "orders_pkey"))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "40001"}), apperror.ErrTransientConflict)
	assert.ErrorIs(t, classify(fmt.Errorf("begin tx: %w", context.DeadlineExceeded)), apperror.ErrTransientConflict)

	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "22P02"}), apperror.ErrInvalidInput)
	assert.ErrorIs(t, classify(fmt.Errorf("insert order: %w", &pgconn.PgError{Code: "22003"})), apperror.ErrInvalidInput)

	domain := &apperror.InsufficientStockError{ProductID: "p"}
	assert.Same(t, domain, classify(domain))
}
