package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type Repository interface {
	// Create inserts the order row and its items.
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, tenantID, orderID string) (*model.Order, error)
	// FindByIDForUpdate locks the order row until the surrounding unit ends.
	FindByIDForUpdate(ctx context.Context, tenantID, orderID string) (*model.Order, error)
	FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*model.Order, error)
	Update(ctx context.Context, o *model.Order) error

	// NextSequence returns the next order number sequence for the tenant and day.
	NextSequence(ctx context.Context, tenantID string, day time.Time) (int64, error)

	AppendStatusEvent(ctx context.Context, ev *model.OrderStatusEvent) error
	ListStatusEvents(ctx context.Context, tenantID, orderID string) ([]model.OrderStatusEvent, error)

	InsertPayment(ctx context.Context, p *model.Payment) error
	ListPayments(ctx context.Context, tenantID, orderID string) ([]model.Payment, error)
}

// IdempotencyStore remembers checkout keys for a bounded window.
type IdempotencyStore interface {
	// Reserve claims key. When the key is already taken it returns the order
	// id recorded for it, or "" while the first request is still in flight.
	Reserve(ctx context.Context, key string, ttl time.Duration) (orderID string, reserved bool, err error)
	Complete(ctx context.Context, key, orderID string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, o *model.Order) error
}

type Indexer interface {
	IndexOrder(ctx context.Context, o *model.Order) error
}

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventPaymentAdded       = "PaymentAdded"
	EventOrderCancelled     = "OrderCancelled"
)
