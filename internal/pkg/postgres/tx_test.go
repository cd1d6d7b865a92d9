package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to POSTGRES_TEST_DSN or skips.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := sqlx.Open("pgx", dsn)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tx_probe (id INT PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM tx_probe`)
	require.NoError(t, err)
	t.Cleanup(func() { db.ExecContext(context.Background(), `DROP TABLE IF EXISTS tx_probe`) })

	m := NewTxManager(db, TxOptions{Timeout: 5 * time.Second, MaxRetries: 2}, logger.NewNop())
	boom := errors.New("boom")

	err = m.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := Conn(ctx, db).ExecContext(ctx, `INSERT INTO tx_probe (id) VALUES (1)`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT count(*) FROM tx_probe`))
	assert.Equal(t, 0, count)
}

func TestTxManagerNestedJoinsOuter(t *testing.T) {
	db := openTestDB(t)
	m := NewTxManager(db, TxOptions{}, logger.NewNop())

	err := m.WithinTx(context.Background(), func(outer context.Context) error {
		return m.WithinTx(outer, func(inner context.Context) error {
			assert.Same(t, Conn(outer, db), Conn(inner, db))
			return nil
		})
	})
	assert.NoError(t, err)
}
