package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/google/uuid"
)

// Producer is satisfied by *broker.KafkaProducer.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID            string             `json:"id"`
	TenantID      string             `json:"tenant_id"`
	LocationID    string             `json:"location_id"`
	OrderNumber   string             `json:"order_number"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	Total         string             `json:"total"`
	PaidAmount    string             `json:"paid_amount"`
	DueAmount     string             `json:"due_amount"`
	Items         []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// PublishOrderEvent keys messages by order id so one order's events stay ordered.
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, eventType string, o *model.Order) error {
	event := OrderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   toPayload(o),
		Timestamp: time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, o.ID, value)
}

func toPayload(o *model.Order) OrderPayload {
	items := make([]OrderItemPayload, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemPayload{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.String(),
		}
	}
	return OrderPayload{
		ID:            o.ID,
		TenantID:      o.TenantID,
		LocationID:    o.LocationID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Total:         o.Total.String(),
		PaidAmount:    o.PaidAmount.String(),
		DueAmount:     o.DueAmount.String(),
		Items:         items,
	}
}
