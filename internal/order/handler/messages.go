package handler

import (
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
}

type CheckoutRequest struct {
	LocationID     string           `json:"location_id"`
	CustomerID     string           `json:"customer_id"`
	Workflow       string           `json:"workflow"`
	Items          []CheckoutItem   `json:"items" binding:"required"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	ShippingCost   decimal.Decimal  `json:"shipping_cost"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	Notes          string           `json:"notes"`
	IdempotencyKey string           `json:"idempotency_key"`
}

type GetOrderRequest struct {
	OrderID string `json:"order_id"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status" binding:"required"`
	Notes   string `json:"notes"`
}

type AddPaymentRequest struct {
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type OrderResponse struct {
	Order *model.Order `json:"order"`
}

type ListStatusEventsResponse struct {
	Items []model.OrderStatusEvent `json:"items"`
}

type ListPaymentsResponse struct {
	Items []model.Payment `json:"items"`
}

func (r *CheckoutRequest) toInput(tenantID, actorID string) *dto.CheckoutInput {
	items := make([]dto.CheckoutItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = dto.CheckoutItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Tax:       item.Tax,
		}
	}
	return &dto.CheckoutInput{
		TenantID:       tenantID,
		LocationID:     r.LocationID,
		ActorID:        actorID,
		CustomerID:     r.CustomerID,
		Workflow:       r.Workflow,
		Items:          items,
		DiscountAmount: r.DiscountAmount,
		ShippingCost:   r.ShippingCost,
		TaxAmount:      r.TaxAmount,
		Notes:          r.Notes,
		IdempotencyKey: r.IdempotencyKey,
	}
}
