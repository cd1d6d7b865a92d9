package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	"github.com/jmoiron/sqlx"
)

const stockColumns = `tenant_id, product_id, location_id, quantity, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Get(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error) {
	var rec model.StockRecord
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3`
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &rec, query, tenantID, productID, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // caller treats a missing record as zero on hand
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PGRepository) BatchGet(ctx context.Context, tenantID string, keys []dto.StockKey) ([]model.StockRecord, error) {
	if len(keys) == 0 {
		return []model.StockRecord{}, nil
	}

	pairs := make([]string, 0, len(keys))
	args := []interface{}{tenantID}
	for _, k := range keys {
		pairs = append(pairs, "(?, ?)")
		args = append(args, k.ProductID, k.LocationID)
	}
	query := `SELECT ` + stockColumns + ` FROM stock_records
        WHERE tenant_id = ? AND (product_id, location_id) IN (` + strings.Join(pairs, ", ") + `)`

	// Rebind for Postgres ($1, $2...)
	query = r.DB.Rebind(query)

	var items []model.StockRecord
	err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error) {
	q := postgres.Conn(ctx, r.DB)

	_, err := q.ExecContext(ctx, `
        INSERT INTO stock_records (tenant_id, product_id, location_id, quantity, updated_at)
        VALUES ($1, $2, $3, 0, NOW())
        ON CONFLICT (product_id, location_id) DO NOTHING
    `, tenantID, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to create stock record: %w", err)
	}

	var rec model.StockRecord
	query := `SELECT ` + stockColumns + ` FROM stock_records
        WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3
        FOR UPDATE`
	if err := q.GetContext(ctx, &rec, query, tenantID, productID, locationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// the (product, location) pair exists under another tenant
			return nil, fmt.Errorf("%w: %s", apperror.ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to lock stock record: %w", err)
	}
	return &rec, nil
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, rec *model.StockRecord) error {
	query := `
        UPDATE stock_records
        SET quantity = :quantity, updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND product_id = :product_id AND location_id = :location_id
    `
	res, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("failed to update stock record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update stock record: %s/%s not found", rec.ProductID, rec.LocationID)
	}
	return nil
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, tenant_id, product_id, location_id,
            movement_type, quantity, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :tenant_id, :product_id, :location_id,
            :movement_type, :quantity, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		conditions = append(conditions, "location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = string(f.MovementType)
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")
	q := postgres.Conn(ctx, r.DB)

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM stock_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := q.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC, id"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}
	query, queryArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}

	items := []model.StockMovement{}
	err = q.SelectContext(ctx, &items, r.DB.Rebind(query), queryArgs...)
	return items, count, err
}
