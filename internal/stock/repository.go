package stock

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
)

type Repository interface {
	// Stock records. Get and BatchGet never create rows.
	Get(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error)
	BatchGet(ctx context.Context, tenantID string, keys []dto.StockKey) ([]model.StockRecord, error)

	// GetForUpdate returns the record locked until the surrounding unit ends,
	// creating it at quantity zero when it does not exist yet.
	GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error)
	UpdateQuantity(ctx context.Context, rec *model.StockRecord) error

	// Movements / Audit
	LogMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
