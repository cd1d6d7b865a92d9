package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/catalog"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/txn"
	"github.com/fekuna/omnipos-ledger-service/internal/stock"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stockUseCase struct {
	repo    stock.Repository
	catalog catalog.Lookup
	tx      txn.Transactor
	logger  logger.ZapLogger
	now     func() time.Time
}

func NewStockUseCase(repo stock.Repository, lookup catalog.Lookup, tx txn.Transactor, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:    repo,
		catalog: lookup,
		tx:      tx,
		logger:  log,
		now:     time.Now,
	}
}

func (uc *stockUseCase) AppendMovement(ctx context.Context, input *dto.AppendMovementInput) (*model.StockMovement, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}
	if err := uc.checkCatalog(ctx, input.TenantID, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}

	var movement *model.StockMovement
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := uc.apply(ctx, input)
		movement = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (uc *stockUseCase) AppendMovements(ctx context.Context, inputs []dto.AppendMovementInput) ([]model.StockMovement, error) {
	if err := uc.validateBatch(ctx, inputs); err != nil {
		return nil, err
	}

	var movements []model.StockMovement
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		movements, err = uc.applyAll(ctx, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (uc *stockUseCase) ApplyOnce(ctx context.Context, inputs []dto.AppendMovementInput) ([]model.StockMovement, bool, error) {
	if err := uc.validateBatch(ctx, inputs); err != nil {
		return nil, false, err
	}
	ref := inputs[0]
	if ref.ReferenceType == "" || ref.ReferenceID == "" {
		return nil, false, apperror.Invalid("reference_type and reference_id are required")
	}
	for _, in := range inputs[1:] {
		if in.TenantID != ref.TenantID || in.ReferenceType != ref.ReferenceType || in.ReferenceID != ref.ReferenceID {
			return nil, false, apperror.Invalid("all movements must share one reference")
		}
	}

	var (
		movements []model.StockMovement
		applied   bool
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// the lookup runs in the same unit as the writes
		existing, _, err := uc.repo.ListMovements(ctx, &dto.MovementFilters{
			TenantID:      ref.TenantID,
			ReferenceType: ref.ReferenceType,
			ReferenceID:   ref.ReferenceID,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			movements, applied = existing, false
			return nil
		}
		movements, err = uc.applyAll(ctx, inputs)
		applied = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if !applied {
		uc.logger.Info("stock reference already applied",
			zap.String("reference_type", ref.ReferenceType),
			zap.String("reference_id", ref.ReferenceID),
		)
	}
	return movements, applied, nil
}

func (uc *stockUseCase) validateBatch(ctx context.Context, inputs []dto.AppendMovementInput) error {
	if len(inputs) == 0 {
		return apperror.Invalid("at least one movement is required")
	}
	for i := range inputs {
		if err := validateMovement(&inputs[i]); err != nil {
			return err
		}
		if err := uc.checkCatalog(ctx, inputs[i].TenantID, inputs[i].ProductID, inputs[i].LocationID); err != nil {
			return err
		}
	}
	return nil
}

func (uc *stockUseCase) applyAll(ctx context.Context, inputs []dto.AppendMovementInput) ([]model.StockMovement, error) {
	movements := make([]model.StockMovement, 0, len(inputs))
	for i := range inputs {
		m, err := uc.apply(ctx, &inputs[i])
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, nil
}

func (uc *stockUseCase) Transfer(ctx context.Context, input *dto.TransferInput) ([]model.StockMovement, error) {
	if input.SourceLocationID == input.TargetLocationID {
		return nil, apperror.Invalid("source and target location must differ")
	}
	transferID := uuid.New().String()
	out := dto.AppendMovementInput{
		TenantID:      input.TenantID,
		ProductID:     input.ProductID,
		LocationID:    input.SourceLocationID,
		Type:          model.MovementOut,
		Quantity:      input.Quantity,
		ReferenceType: "transfer",
		ReferenceID:   transferID,
		Notes:         input.Notes,
		ActorID:       input.ActorID,
	}
	in := out
	in.LocationID = input.TargetLocationID
	in.Type = model.MovementIn

	return uc.AppendMovements(ctx, []dto.AppendMovementInput{out, in})
}

// apply runs inside a unit of work: lock, validate, update, log.
func (uc *stockUseCase) apply(ctx context.Context, input *dto.AppendMovementInput) (*model.StockMovement, error) {
	// 1. Lock current record (created at zero on first use)
	rec, err := uc.repo.GetForUpdate(ctx, input.TenantID, input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}

	quantityBefore := rec.Quantity
	delta := input.Type.Delta(input.Quantity)
	if delta > 0 && quantityBefore > math.MaxInt64-delta {
		return nil, apperror.Invalid("product %s at %s: quantity %d would overflow stock of %d",
			input.ProductID, input.LocationID, input.Quantity, quantityBefore)
	}
	quantityAfter := quantityBefore + delta
	if quantityAfter < 0 {
		if input.Type == model.MovementOut {
			return nil, &apperror.InsufficientStockError{
				ProductID:  input.ProductID,
				LocationID: input.LocationID,
				Requested:  input.Quantity,
				Available:  quantityBefore,
			}
		}
		return nil, fmt.Errorf("%w: product %s at %s has %d, delta %d",
			apperror.ErrInvalidAdjustment, input.ProductID, input.LocationID, quantityBefore, input.Quantity)
	}

	now := uc.now()
	rec.Quantity = quantityAfter
	rec.UpdatedAt = now

	// 2. Update record and log movement in the same unit
	if err := uc.repo.UpdateQuantity(ctx, rec); err != nil {
		return nil, err
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		TenantID:       input.TenantID,
		ProductID:      input.ProductID,
		LocationID:     input.LocationID,
		MovementType:   input.Type,
		Quantity:       input.Quantity,
		QuantityBefore: quantityBefore,
		QuantityAfter:  quantityAfter,
		ReferenceType:  optional(input.ReferenceType),
		ReferenceID:    optional(input.ReferenceID),
		Notes:          input.Notes,
		CreatedBy:      optional(input.ActorID),
		CreatedAt:      now,
	}
	if err := uc.repo.LogMovement(ctx, movement); err != nil {
		return nil, err
	}

	uc.logger.Debug("stock movement applied",
		zap.String("product_id", input.ProductID),
		zap.String("location_id", input.LocationID),
		zap.String("type", string(input.Type)),
		zap.Int64("quantity_after", quantityAfter),
	)
	return movement, nil
}

func (uc *stockUseCase) GetStock(ctx context.Context, tenantID, productID, locationID string) (*model.StockRecord, error) {
	if productID == "" || locationID == "" {
		return nil, apperror.Invalid("product_id and location_id are required")
	}
	rec, err := uc.repo.Get(ctx, tenantID, productID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &model.StockRecord{
			TenantID:   tenantID,
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   0,
		}, nil
	}
	return rec, nil
}

func (uc *stockUseCase) CheckAvailability(ctx context.Context, tenantID string, requests []dto.AvailabilityRequest) ([]dto.AvailabilityResult, error) {
	keys := make([]dto.StockKey, 0, len(requests))
	for _, req := range requests {
		if req.ProductID == "" || req.LocationID == "" {
			return nil, apperror.Invalid("product_id and location_id are required")
		}
		if req.Requested < 0 {
			return nil, apperror.Invalid("requested quantity for %s must not be negative", req.ProductID)
		}
		keys = append(keys, dto.StockKey{ProductID: req.ProductID, LocationID: req.LocationID})
	}

	records, err := uc.repo.BatchGet(ctx, tenantID, keys)
	if err != nil {
		return nil, err
	}
	onHand := make(map[dto.StockKey]int64, len(records))
	for _, rec := range records {
		onHand[dto.StockKey{ProductID: rec.ProductID, LocationID: rec.LocationID}] = rec.Quantity
	}

	results := make([]dto.AvailabilityResult, len(requests))
	for i, req := range requests {
		available := onHand[dto.StockKey{ProductID: req.ProductID, LocationID: req.LocationID}]
		results[i] = dto.AvailabilityResult{
			ProductID:   req.ProductID,
			LocationID:  req.LocationID,
			Requested:   req.Requested,
			Available:   available,
			Satisfiable: available >= req.Requested,
		}
	}
	return results, nil
}

func (uc *stockUseCase) EnsureAvailable(ctx context.Context, tenantID string, requests []dto.AvailabilityRequest) error {
	// Lines for the same product and location are checked as one total.
	totals := map[dto.StockKey]int64{}
	var order []dto.StockKey
	for _, req := range requests {
		k := dto.StockKey{ProductID: req.ProductID, LocationID: req.LocationID}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += req.Requested
	}
	// Lock in a stable order so concurrent units cannot deadlock on each other.
	sorted := append([]dto.StockKey(nil), order...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].LocationID < sorted[j].LocationID
	})

	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		available := make(map[dto.StockKey]int64, len(sorted))
		for _, k := range sorted {
			rec, err := uc.repo.GetForUpdate(ctx, tenantID, k.ProductID, k.LocationID)
			if err != nil {
				return err
			}
			available[k] = rec.Quantity
		}
		for _, k := range order {
			if available[k] < totals[k] {
				return &apperror.InsufficientStockError{
					ProductID:  k.ProductID,
					LocationID: k.LocationID,
					Requested:  totals[k],
					Available:  available[k],
				}
			}
		}
		return nil
	})
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	if filters.MovementType != "" && !filters.MovementType.Valid() {
		return nil, 0, apperror.Invalid("unknown movement type %q", filters.MovementType)
	}
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *stockUseCase) checkCatalog(ctx context.Context, tenantID, productID, locationID string) error {
	if uc.catalog == nil {
		return nil
	}
	products, err := uc.catalog.FindProducts(ctx, tenantID, []string{productID})
	if err != nil {
		return err
	}
	if _, ok := products[productID]; !ok {
		return fmt.Errorf("%w: %s", apperror.ErrProductNotFound, productID)
	}
	loc, err := uc.catalog.FindLocation(ctx, tenantID, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: %s", apperror.ErrLocationNotFound, locationID)
	}
	return nil
}

func validateMovement(input *dto.AppendMovementInput) error {
	switch {
	case input.TenantID == "":
		return apperror.ErrMissingTenant
	case input.ProductID == "" || input.LocationID == "":
		return apperror.Invalid("product_id and location_id are required")
	case !input.Type.Valid():
		return apperror.Invalid("unknown movement type %q", input.Type)
	case input.Type == model.MovementAdjust && input.Quantity == 0:
		return apperror.Invalid("adjustment delta must not be zero")
	case input.Type != model.MovementAdjust && input.Quantity <= 0:
		return apperror.Invalid("%s quantity must be positive", input.Type)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
