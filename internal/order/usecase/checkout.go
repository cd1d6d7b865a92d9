package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
	stockdto "github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (uc *orderUseCase) Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Order, error) {
	// 1. Validate request and catalog references before opening the unit
	if err := validateCheckout(input); err != nil {
		return nil, err
	}
	locationID, err := uc.resolveLocation(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := uc.validateReferences(ctx, input); err != nil {
		return nil, err
	}

	// 2. Idempotency fast path
	idemKey := ""
	if input.IdempotencyKey != "" && uc.idem != nil {
		key := "checkout:" + input.TenantID + ":" + input.IdempotencyKey
		orderID, reserved, err := uc.idem.Reserve(ctx, key, uc.cfg.InFlightTTL)
		switch {
		case err != nil:
			uc.logger.Warn("idempotency store unavailable, relying on order key", zap.Error(err))
		case !reserved && orderID == "":
			return nil, fmt.Errorf("%w: checkout %s", apperror.ErrDuplicateRequest, input.IdempotencyKey)
		case !reserved:
			return uc.GetOrder(ctx, input.TenantID, orderID)
		default:
			idemKey = key
		}
	}

	// 3. Atomic unit
	o, replayed, err := uc.checkoutTx(ctx, input, locationID)
	if errors.Is(err, apperror.ErrDuplicateRequest) && input.IdempotencyKey != "" {
		// a concurrent request committed the same key first
		if existing, findErr := uc.repo.FindByIdempotencyKey(ctx, input.TenantID, input.IdempotencyKey); findErr == nil && existing != nil {
			o, replayed, err = existing, true, nil
		}
	}
	if err != nil {
		if idemKey != "" {
			if relErr := uc.idem.Release(context.WithoutCancel(ctx), idemKey); relErr != nil {
				uc.logger.Error("failed to release idempotency key", zap.String("key", idemKey), zap.Error(relErr))
			}
		}
		uc.logger.Warn("checkout rejected", zap.String("tenant_id", input.TenantID), zap.Error(err))
		return nil, err
	}

	// 4. Post-commit side effects
	if idemKey != "" {
		if err := uc.idem.Complete(context.WithoutCancel(ctx), idemKey, o.ID, uc.cfg.IdempotencyTTL); err != nil {
			uc.logger.Error("failed to record idempotency key", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	if !replayed {
		uc.logger.Info("order created",
			zap.String("order_id", o.ID),
			zap.String("order_number", o.OrderNumber),
			zap.String("total", o.Total.String()),
		)
		uc.afterCommit(order.EventOrderCreated, o)
	}
	return o, nil
}

func (uc *orderUseCase) checkoutTx(ctx context.Context, input *dto.CheckoutInput, locationID string) (*model.Order, bool, error) {
	var (
		result   *model.Order
		replayed bool
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		result, replayed = nil, false

		if input.IdempotencyKey != "" {
			existing, err := uc.repo.FindByIdempotencyKey(ctx, input.TenantID, input.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				result, replayed = existing, true
				return nil
			}
		}

		// a. Stock check for every line, locking the records
		requests := make([]stockdto.AvailabilityRequest, len(input.Items))
		for i, item := range input.Items {
			requests[i] = stockdto.AvailabilityRequest{
				ProductID:  item.ProductID,
				LocationID: locationID,
				Requested:  item.Quantity,
			}
		}
		if err := uc.stock.EnsureAvailable(ctx, input.TenantID, requests); err != nil {
			return err
		}

		// b. Totals and order number
		now := uc.now().UTC()
		draft, err := buildOrder(input, locationID, now)
		if err != nil {
			return err
		}
		seq, err := uc.repo.NextSequence(ctx, input.TenantID, now)
		if err != nil {
			return err
		}
		draft.OrderNumber = formatOrderNumber(now, seq)

		// c. Deduct stock, one OUT movement per line
		for _, item := range draft.Items {
			_, err := uc.stock.AppendMovement(ctx, &stockdto.AppendMovementInput{
				TenantID:      input.TenantID,
				ProductID:     item.ProductID,
				LocationID:    locationID,
				Type:          model.MovementOut,
				Quantity:      item.Quantity,
				ReferenceType: "order",
				ReferenceID:   draft.ID,
				Notes:         draft.OrderNumber,
				ActorID:       input.ActorID,
			})
			if err != nil {
				return err
			}
		}

		// d. Order, items and the initial status event
		if err := uc.repo.Create(ctx, draft); err != nil {
			return err
		}
		if err := uc.recordStatus(ctx, draft, "order created", input.ActorID, now); err != nil {
			return err
		}

		created, err := uc.repo.FindByID(ctx, input.TenantID, draft.ID)
		if err != nil {
			return err
		}
		if created == nil {
			return fmt.Errorf("order %s vanished after insert", draft.ID)
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, replayed, nil
}

func (uc *orderUseCase) resolveLocation(ctx context.Context, input *dto.CheckoutInput) (string, error) {
	if input.LocationID != "" {
		loc, err := uc.catalog.FindLocation(ctx, input.TenantID, input.LocationID)
		if err != nil {
			return "", err
		}
		if loc == nil || !loc.IsActive {
			return "", fmt.Errorf("%w: %s", apperror.ErrLocationNotFound, input.LocationID)
		}
		return loc.ID, nil
	}

	loc, err := uc.catalog.FindDefaultLocation(ctx, input.TenantID)
	if err != nil {
		return "", err
	}
	if loc == nil {
		return "", fmt.Errorf("%w: tenant has no default location", apperror.ErrLocationNotFound)
	}
	return loc.ID, nil
}

func (uc *orderUseCase) validateReferences(ctx context.Context, input *dto.CheckoutInput) error {
	ids := make([]string, 0, len(input.Items))
	seen := map[string]bool{}
	for _, item := range input.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := uc.catalog.FindProducts(ctx, input.TenantID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			return fmt.Errorf("%w: %s", apperror.ErrProductNotFound, id)
		}
		if !p.IsActive {
			return fmt.Errorf("%w: %s is inactive", apperror.ErrProductNotFound, id)
		}
	}

	if input.CustomerID != "" {
		c, err := uc.catalog.FindCustomer(ctx, input.TenantID, input.CustomerID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: %s", apperror.ErrCustomerNotFound, input.CustomerID)
		}
	}
	return nil
}

func validateCheckout(input *dto.CheckoutInput) error {
	if input.TenantID == "" {
		return apperror.ErrMissingTenant
	}
	if len(input.Items) == 0 {
		return apperror.Invalid("at least one item is required")
	}
	switch input.Workflow {
	case "", dto.WorkflowDelivery, dto.WorkflowPOS:
	default:
		return apperror.Invalid("unknown workflow %q", input.Workflow)
	}
	for i, item := range input.Items {
		switch {
		case item.ProductID == "":
			return apperror.Invalid("item %d: product_id is required", i+1)
		case item.Quantity <= 0:
			return apperror.Invalid("item %d: quantity must be positive", i+1)
		case item.UnitPrice.IsNegative(), item.Discount.IsNegative(), item.Tax.IsNegative():
			return apperror.Invalid("item %d: amounts must not be negative", i+1)
		}
		for name, amount := range map[string]decimal.Decimal{
			"unit_price": item.UnitPrice,
			"discount":   item.Discount,
			"tax":        item.Tax,
		} {
			if err := checkMoney(fmt.Sprintf("item %d: %s", i+1, name), amount); err != nil {
				return err
			}
		}
	}
	if input.DiscountAmount.IsNegative() || input.ShippingCost.IsNegative() {
		return apperror.Invalid("discount and shipping must not be negative")
	}
	if err := checkMoney("discount_amount", input.DiscountAmount); err != nil {
		return err
	}
	if err := checkMoney("shipping_cost", input.ShippingCost); err != nil {
		return err
	}
	if input.TaxAmount != nil {
		if input.TaxAmount.IsNegative() {
			return apperror.Invalid("tax must not be negative")
		}
		if err := checkMoney("tax_amount", *input.TaxAmount); err != nil {
			return err
		}
	}
	return nil
}

// buildOrder computes line and order totals:
// subtotal = Σ(quantity × unitPrice − lineDiscount), total = subtotal + tax − discount + shipping.
func buildOrder(input *dto.CheckoutInput, locationID string, now time.Time) (*model.Order, error) {
	orderID := uuid.New().String()

	subtotal := decimal.Zero
	lineTax := decimal.Zero
	items := make([]model.OrderItem, 0, len(input.Items))
	for i, line := range input.Items {
		gross := line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		if line.Discount.GreaterThan(gross) {
			return nil, apperror.Invalid("item %d: discount exceeds line amount", i+1)
		}
		net := gross.Sub(line.Discount)
		items = append(items, model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			LineNo:    i + 1,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
			Tax:       line.Tax,
			LineTotal: net.Add(line.Tax),
		})
		subtotal = subtotal.Add(net)
		lineTax = lineTax.Add(line.Tax)
	}

	tax := lineTax
	if input.TaxAmount != nil {
		tax = *input.TaxAmount
	}
	total := subtotal.Add(tax).Sub(input.DiscountAmount).Add(input.ShippingCost)
	if err := checkMoney("total", total); err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, apperror.Invalid("order discount exceeds order amount")
	}

	status := model.OrderPending
	if input.Workflow == dto.WorkflowPOS {
		status = model.OrderCompleted
	}

	return &model.Order{
		BaseModel: model.BaseModel{
			ID:        orderID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		TenantID:       input.TenantID,
		LocationID:     locationID,
		CustomerID:     optional(input.CustomerID),
		Status:         status,
		PaymentStatus:  model.PaymentUnpaid,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: input.DiscountAmount,
		ShippingCost:   input.ShippingCost,
		Total:          total,
		PaidAmount:     decimal.Zero,
		DueAmount:      total,
		Notes:          input.Notes,
		IdempotencyKey: optional(input.IdempotencyKey),
		CreatedBy:      optional(input.ActorID),
		Items:          items,
	}, nil
}

func formatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), seq)
}
