package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

// PGRepository reads the catalog tables. Inside a unit of work it reads
// through the unit's transaction.
type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindProducts(ctx context.Context, tenantID string, productIDs []string) (map[string]model.Product, error) {
	found := make(map[string]model.Product, len(productIDs))
	if len(productIDs) == 0 {
		return found, nil
	}

	query, args, err := sqlx.In(`
        SELECT id, tenant_id, sku, name, base_price, is_active, created_at, updated_at
        FROM products
        WHERE tenant_id = ? AND id IN (?)
    `, tenantID, productIDs)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func (r *PGRepository) FindLocation(ctx context.Context, tenantID, locationID string) (*model.Location, error) {
	var loc model.Location
	query := `SELECT * FROM locations WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &loc, query, tenantID, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PGRepository) FindDefaultLocation(ctx context.Context, tenantID string) (*model.Location, error) {
	var loc model.Location
	query := `
        SELECT * FROM locations
        WHERE tenant_id = $1 AND is_default AND is_active
        ORDER BY created_at
        LIMIT 1
    `
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &loc, query, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PGRepository) FindCustomer(ctx context.Context, tenantID, customerID string) (*model.Customer, error) {
	var c model.Customer
	query := `SELECT * FROM customers WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &c, query, tenantID, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
