package dto

import "github.com/fekuna/omnipos-ledger-service/internal/model"

type AppendMovementInput struct {
	TenantID      string
	ProductID     string
	LocationID    string
	Type          model.MovementType
	Quantity      int64  // magnitude for IN/OUT, signed delta for ADJUST
	ReferenceType string // 'order', 'order_cancel', 'transfer', 'goods_receipt', 'stock_count'
	ReferenceID   string
	Notes         string
	ActorID       string
}

type TransferInput struct {
	TenantID         string
	ProductID        string
	SourceLocationID string
	TargetLocationID string
	Quantity         int64
	Notes            string
	ActorID          string
}
