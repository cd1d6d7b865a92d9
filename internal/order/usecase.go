package order

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
)

type UseCase interface {
	Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Order, error)

	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error)
	AddPayment(ctx context.Context, input *dto.AddPaymentInput) (*model.Order, error)
	Cancel(ctx context.Context, input *dto.CancelInput) (*model.Order, error)

	GetOrder(ctx context.Context, tenantID, orderID string) (*model.Order, error)
	ListStatusEvents(ctx context.Context, tenantID, orderID string) ([]model.OrderStatusEvent, error)
	ListPayments(ctx context.Context, tenantID, orderID string) ([]model.Payment, error)
}
