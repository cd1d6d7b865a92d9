package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-ledger-service/internal/stock"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	"github.com/fekuna/omnipos-ledger-service/migrations"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ stock.Repository = (*PGRepository)(nil)
	_ stock.Repository = (*MemoryRepository)(nil)
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := sqlx.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	require.NoError(t, migrations.Apply(ctx, db))
	return db
}

func seedCatalog(t *testing.T, db *sqlx.DB, tenantID string) (productID, locationID string) {
	t.Helper()
	productID, locationID = "p-"+uuid.NewString(), "l-"+uuid.NewString()
	_, err := db.Exec(`INSERT INTO products (id, tenant_id, name) VALUES ($1, $2, 'Espresso')`, productID, tenantID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO locations (id, tenant_id, name) VALUES ($1, $2, 'Main')`, locationID, tenantID)
	require.NoError(t, err)
	return productID, locationID
}

func TestPGRepositoryLocksAndLogs(t *testing.T) {
	db := openTestDB(t)
	r := NewPGRepository(db)
	tx := postgres.NewTxManager(db, postgres.TxOptions{Timeout: 5 * time.Second}, logger.NewNop())
	ctx := context.Background()

	tenant := "t-" + uuid.NewString()
	product, location := seedCatalog(t, db, tenant)

	rec, err := r.Get(ctx, tenant, product, location)
	require.NoError(t, err)
	assert.Nil(t, rec, "records are not created by reads")

	refType, ref := "goods_receipt", "gr-"+uuid.NewString()
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := r.GetForUpdate(ctx, tenant, product, location)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(0), rec.Quantity)
		rec.Quantity = 7
		rec.UpdatedAt = time.Now()
		if err := r.UpdateQuantity(ctx, rec); err != nil {
			return err
		}
		return r.LogMovement(ctx, &model.StockMovement{
			ID:             uuid.NewString(),
			TenantID:       tenant,
			ProductID:      product,
			LocationID:     location,
			MovementType:   model.MovementIn,
			Quantity:       7,
			QuantityBefore: 0,
			QuantityAfter:  7,
			ReferenceType:  &refType,
			ReferenceID:    &ref,
			CreatedAt:      time.Now(),
		})
	})
	require.NoError(t, err)

	rec, err = r.Get(ctx, tenant, product, location)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.Quantity)

	records, err := r.BatchGet(ctx, tenant, []dto.StockKey{{ProductID: product, LocationID: location}, {ProductID: "missing", LocationID: location}})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	items, total, err := r.ListMovements(ctx, &dto.MovementFilters{TenantID: tenant, ReferenceType: "goods_receipt", ReferenceID: ref, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].QuantityAfter)

	_, total, err = r.ListMovements(ctx, &dto.MovementFilters{TenantID: tenant, MovementType: model.MovementOut})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPGRepositoryRejectsForeignRecord(t *testing.T) {
	db := openTestDB(t)
	r := NewPGRepository(db)
	tx := postgres.NewTxManager(db, postgres.TxOptions{Timeout: 5 * time.Second}, logger.NewNop())
	ctx := context.Background()

	owner := "t-" + uuid.NewString()
	product, location := seedCatalog(t, db, owner)
	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := r.GetForUpdate(ctx, owner, product, location)
		return err
	}))

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := r.GetForUpdate(ctx, "t-"+uuid.NewString(), product, location)
		return err
	})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	rec, err := r.Get(ctx, "intruder", product, location)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
