package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Querier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx.
type Querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	Rebind(query string) string
}

type txKey struct{}

type TxOptions struct {
	Timeout    time.Duration
	MaxRetries int
}

// TxManager runs units of work in SERIALIZABLE transactions bounded by a
// timeout. Serialization failures are retried against fresh snapshots.
type TxManager struct {
	db     *sqlx.DB
	opts   TxOptions
	logger logger.ZapLogger
}

func NewTxManager(db *sqlx.DB, opts TxOptions, log logger.ZapLogger) *TxManager {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &TxManager{db: db, opts: opts, logger: log}
}

// Conn returns the transaction bound to ctx, or the pool outside one.
func Conn(ctx context.Context, db *sqlx.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	var err error
	for attempt := 0; ; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || !IsSerializationFailure(err) || attempt >= m.opts.MaxRetries {
			break
		}
		m.logger.Debug("retrying serializable transaction", zap.Int("attempt", attempt+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", apperror.ErrTransientConflict, ctx.Err())
		case <-time.After(backoff(attempt)):
		}
	}
	return classify(err)
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case IsSerializationFailure(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", apperror.ErrTransientConflict, err)
	case IsInvalidValue(err):
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}
	return err
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt+1) * 20 * time.Millisecond
}
