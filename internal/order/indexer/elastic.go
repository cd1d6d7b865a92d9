package indexer

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

const OrderIndex = "orders"

const orderMapping = `{
  "mappings": {
    "properties": {
      "tenant_id":      {"type": "keyword"},
      "location_id":    {"type": "keyword"},
      "customer_id":    {"type": "keyword"},
      "order_number":   {"type": "keyword"},
      "status":         {"type": "keyword"},
      "payment_status": {"type": "keyword"},
      "total":          {"type": "scaled_float", "scaling_factor": 100},
      "due_amount":     {"type": "scaled_float", "scaling_factor": 100},
      "product_ids":    {"type": "keyword"},
      "created_at":     {"type": "date"},
      "updated_at":     {"type": "date"}
    }
  }
}`

// SearchClient is satisfied by *search.Client.
type SearchClient interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
}

type OrderDocument struct {
	TenantID      string    `json:"tenant_id"`
	LocationID    string    `json:"location_id"`
	CustomerID    string    `json:"customer_id,omitempty"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Total         float64   `json:"total"`
	DueAmount     float64   `json:"due_amount"`
	ProductIDs    []string  `json:"product_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ElasticIndexer keeps a searchable copy of every order.
type ElasticIndexer struct {
	client SearchClient

	once    sync.Once
	initErr error
}

func NewElasticIndexer(client SearchClient) *ElasticIndexer {
	return &ElasticIndexer{client: client}
}

func (i *ElasticIndexer) IndexOrder(ctx context.Context, o *model.Order) error {
	i.once.Do(func() {
		i.initErr = i.client.CreateIndex(ctx, OrderIndex, orderMapping)
	})
	if i.initErr != nil {
		return i.initErr
	}
	return i.client.Index(ctx, OrderIndex, o.ID, NewOrderDocument(o))
}

func NewOrderDocument(o *model.Order) OrderDocument {
	doc := OrderDocument{
		TenantID:      o.TenantID,
		LocationID:    o.LocationID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Total:         o.Total.InexactFloat64(),
		DueAmount:     o.DueAmount.InexactFloat64(),
		ProductIDs:    make([]string, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.CustomerID != nil {
		doc.CustomerID = *o.CustomerID
	}
	for _, item := range o.Items {
		doc.ProductIDs = append(doc.ProductIDs, item.ProductID)
	}
	return doc
}
