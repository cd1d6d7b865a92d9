package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderReady      OrderStatus = "READY"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderReady,
		OrderDelivered, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCompleted || s == OrderCancelled
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

type Order struct {
	BaseModel
	TenantID        string          `db:"tenant_id" json:"tenant_id"`
	OrderNumber     string          `db:"order_number" json:"order_number"`
	LocationID      string          `db:"location_id" json:"location_id"`
	CustomerID      *string         `db:"customer_id" json:"customer_id,omitempty"`
	Status          OrderStatus     `db:"status" json:"status"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"payment_status"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	ShippingCost    decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	DueAmount       decimal.Decimal `db:"due_amount" json:"due_amount"`
	IsDeliveryReady bool            `db:"is_delivery_ready" json:"is_delivery_ready"`
	ReadyAt         *time.Time      `db:"ready_at" json:"ready_at,omitempty"`
	DeliveredAt     *time.Time      `db:"delivered_at" json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason    *string         `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Notes           string          `db:"notes" json:"notes"`
	IdempotencyKey  *string         `db:"idempotency_key" json:"-"`
	CreatedBy       *string         `db:"created_by" json:"created_by,omitempty"`
	Items           []OrderItem     `db:"-" json:"items"`
}

type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	LineNo    int             `db:"line_no" json:"line_no"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Discount  decimal.Decimal `db:"discount" json:"discount"`
	Tax       decimal.Decimal `db:"tax" json:"tax"`
	LineTotal decimal.Decimal `db:"line_total" json:"line_total"`
}

// OrderStatusEvent is one row of an order's append-only status history.
type OrderStatusEvent struct {
	ID        string      `db:"id" json:"id"`
	Seq       int64       `db:"seq" json:"seq"`
	TenantID  string      `db:"tenant_id" json:"tenant_id"`
	OrderID   string      `db:"order_id" json:"order_id"`
	Status    OrderStatus `db:"status" json:"status"`
	Notes     string      `db:"notes" json:"notes"`
	ActorID   *string     `db:"actor_id" json:"actor_id,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

type Payment struct {
	ID        string          `db:"id" json:"id"`
	TenantID  string          `db:"tenant_id" json:"tenant_id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Method    string          `db:"method" json:"method"`
	Reference *string         `db:"reference" json:"reference,omitempty"`
	CreatedBy *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
