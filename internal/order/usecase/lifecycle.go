package usecase

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
	stockdto "github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (uc *orderUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error) {
	if !input.Status.Valid() {
		return nil, apperror.Invalid("unknown status %q", input.Status)
	}
	if input.Status == model.OrderCancelled {
		return uc.Cancel(ctx, &dto.CancelInput{
			TenantID: input.TenantID,
			OrderID:  input.OrderID,
			Reason:   input.Notes,
			ActorID:  input.ActorID,
		})
	}

	var updated *model.Order
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.lockOrder(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if err := checkTransition(uc.cfg.StrictTransitions, o.Status, input.Status); err != nil {
			return err
		}

		now := uc.now().UTC()
		o.Status = input.Status
		o.UpdatedAt = now
		switch input.Status {
		case model.OrderReady:
			o.IsDeliveryReady = true
			o.ReadyAt = &now
		case model.OrderDelivered:
			o.DeliveredAt = &now
		}

		if err := uc.repo.Update(ctx, o); err != nil {
			return err
		}
		if err := uc.recordStatus(ctx, o, input.Notes, input.ActorID, now); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status changed", zap.String("order_id", updated.ID), zap.String("status", string(updated.Status)))
	uc.afterCommit(order.EventOrderStatusChanged, updated)
	return updated, nil
}

func (uc *orderUseCase) AddPayment(ctx context.Context, input *dto.AddPaymentInput) (*model.Order, error) {
	if !input.Amount.IsPositive() {
		return nil, apperror.Invalid("payment amount must be positive")
	}
	if err := checkMoney("amount", input.Amount); err != nil {
		return nil, err
	}
	if input.Method == "" {
		return nil, apperror.Invalid("payment method is required")
	}

	var updated *model.Order
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.lockOrder(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if o.Status == model.OrderCancelled {
			return apperror.ErrOrderCancelled
		}

		now := uc.now().UTC()
		o.PaidAmount = o.PaidAmount.Add(input.Amount)
		applyPaymentState(o)
		o.UpdatedAt = now

		if err := uc.repo.Update(ctx, o); err != nil {
			return err
		}
		if err := uc.repo.InsertPayment(ctx, &model.Payment{
			ID:        uuid.New().String(),
			TenantID:  o.TenantID,
			OrderID:   o.ID,
			Amount:    input.Amount,
			Method:    input.Method,
			Reference: optional(input.Reference),
			CreatedBy: optional(input.ActorID),
			CreatedAt: now,
		}); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(order.EventPaymentAdded, updated)
	return updated, nil
}

func (uc *orderUseCase) Cancel(ctx context.Context, input *dto.CancelInput) (*model.Order, error) {
	var cancelled *model.Order
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.lockOrder(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if err := checkTransition(uc.cfg.StrictTransitions, o.Status, model.OrderCancelled); err != nil {
			return err
		}

		if uc.cfg.RestockOnCancel {
			if err := uc.restock(ctx, o, input.ActorID); err != nil {
				return err
			}
		}

		now := uc.now().UTC()
		o.Status = model.OrderCancelled
		o.CancelledAt = &now
		o.CancelReason = optional(input.Reason)
		o.UpdatedAt = now

		if err := uc.repo.Update(ctx, o); err != nil {
			return err
		}
		if err := uc.recordStatus(ctx, o, input.Reason, input.ActorID, now); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order cancelled", zap.String("order_id", cancelled.ID), zap.Bool("restocked", uc.cfg.RestockOnCancel))
	uc.afterCommit(order.EventOrderCancelled, cancelled)
	return cancelled, nil
}

// restock returns every line of o to its location with compensating IN movements.
func (uc *orderUseCase) restock(ctx context.Context, o *model.Order, actorID string) error {
	for _, item := range o.Items {
		_, err := uc.stock.AppendMovement(ctx, &stockdto.AppendMovementInput{
			TenantID:      o.TenantID,
			ProductID:     item.ProductID,
			LocationID:    o.LocationID,
			Type:          model.MovementIn,
			Quantity:      item.Quantity,
			ReferenceType: "order_cancel",
			ReferenceID:   o.ID,
			Notes:         o.OrderNumber,
			ActorID:       actorID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// applyPaymentState derives dueAmount and paymentStatus from paidAmount and total.
func applyPaymentState(o *model.Order) {
	due := o.Total.Sub(o.PaidAmount)
	if due.IsNegative() {
		due = decimal.Zero
	}
	o.DueAmount = due

	switch {
	case due.IsZero():
		o.PaymentStatus = model.PaymentPaid
	case o.PaidAmount.IsPositive():
		o.PaymentStatus = model.PaymentPartial
	default:
		o.PaymentStatus = model.PaymentUnpaid
	}
}

