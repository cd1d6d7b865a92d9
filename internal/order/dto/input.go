package dto

import (
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/shopspring/decimal"
)

const (
	WorkflowDelivery = "delivery"
	WorkflowPOS      = "pos"
)

type CheckoutItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
}

type CheckoutInput struct {
	TenantID       string
	LocationID     string // empty selects the tenant's default location
	ActorID        string
	CustomerID     string
	Workflow       string // 'delivery' (default) or 'pos'
	Items          []CheckoutItemInput
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	TaxAmount      *decimal.Decimal // overrides the sum of line taxes
	Notes          string
	IdempotencyKey string
}

type UpdateStatusInput struct {
	TenantID string
	OrderID  string
	Status   model.OrderStatus
	Notes    string
	ActorID  string
}

type AddPaymentInput struct {
	TenantID  string
	OrderID   string
	Amount    decimal.Decimal
	Method    string
	Reference string
	ActorID   string
}

type CancelInput struct {
	TenantID string
	OrderID  string
	Reason   string
	ActorID  string
}
