package dto

import (
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type StockKey struct {
	ProductID  string
	LocationID string
}

type AvailabilityRequest struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Requested  int64  `json:"requested"`
}

type AvailabilityResult struct {
	ProductID   string `json:"product_id"`
	LocationID  string `json:"location_id"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
	Satisfiable bool   `json:"satisfiable"`
}

type MovementFilters struct {
	TenantID      string
	ProductID     string
	LocationID    string
	MovementType  model.MovementType
	ReferenceType string
	ReferenceID   string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}
