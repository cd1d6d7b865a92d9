package stock

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
)

type UseCase interface {
	AppendMovement(ctx context.Context, input *dto.AppendMovementInput) (*model.StockMovement, error)
	// AppendMovements applies every input or none of them.
	AppendMovements(ctx context.Context, inputs []dto.AppendMovementInput) ([]model.StockMovement, error)
	// ApplyOnce is AppendMovements for inputs sharing one external reference.
	// When movements with that reference already exist it applies nothing and
	// reports false.
	ApplyOnce(ctx context.Context, inputs []dto.AppendMovementInput) ([]model.StockMovement, bool, error)
	Transfer(ctx context.Context, input *dto.TransferInput) ([]model.StockMovement, error)

	GetStock(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error)
	CheckAvailability(ctx context.Context, tenantID string, requests []dto.AvailabilityRequest) ([]dto.AvailabilityResult, error)
	// EnsureAvailable locks the requested records for the caller's unit of
	// work and fails with an InsufficientStockError naming the first short product.
	EnsureAvailable(ctx context.Context, tenantID string, requests []dto.AvailabilityRequest) error

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
