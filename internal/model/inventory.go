package model

import "time"

type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust:
		return true
	}
	return false
}

// Delta is the signed change a movement of quantity q applies to on-hand stock.
// IN and OUT carry a magnitude, ADJUST is already signed.
func (t MovementType) Delta(q int64) int64 {
	if t == MovementOut {
		return -q
	}
	return q
}

// StockRecord is the on-hand quantity of one product at one location.
type StockRecord struct {
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	ProductID  string    `db:"product_id" json:"product_id"`
	LocationID string    `db:"location_id" json:"location_id"`
	Quantity   int64     `db:"quantity" json:"quantity"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	TenantID       string       `db:"tenant_id" json:"tenant_id"`
	ProductID      string       `db:"product_id" json:"product_id"`
	LocationID     string       `db:"location_id" json:"location_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	Quantity       int64        `db:"quantity" json:"quantity"`
	QuantityBefore int64        `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int64        `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string      `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id,omitempty"`
	Notes          string       `db:"notes" json:"notes"`
	CreatedBy      *string      `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
