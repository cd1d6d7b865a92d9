package handler

import (
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
)

type AppendMovementRequest struct {
	ProductID     string `json:"product_id" binding:"required"`
	LocationID    string `json:"location_id" binding:"required"`
	MovementType  string `json:"movement_type" binding:"required"`
	Quantity      int64  `json:"quantity"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
	Notes         string `json:"notes"`
}

type TransferRequest struct {
	ProductID        string `json:"product_id" binding:"required"`
	SourceLocationID string `json:"source_location_id" binding:"required"`
	TargetLocationID string `json:"target_location_id" binding:"required"`
	Quantity         int64  `json:"quantity"`
	Notes            string `json:"notes"`
}

type MovementResponse struct {
	Movement *model.StockMovement `json:"movement"`
}

type TransferResponse struct {
	Movements []model.StockMovement `json:"movements"`
}

type GetStockRequest struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
}

type StockResponse struct {
	Stock *model.StockRecord `json:"stock"`
}

type CheckAvailabilityRequest struct {
	Items []dto.AvailabilityRequest `json:"items" binding:"required"`
}

type CheckAvailabilityResponse struct {
	Items []dto.AvailabilityResult `json:"items"`
}

type ListMovementsRequest struct {
	ProductID     string     `json:"product_id" form:"product_id"`
	LocationID    string     `json:"location_id" form:"location_id"`
	MovementType  string     `json:"movement_type" form:"movement_type"`
	ReferenceType string     `json:"reference_type" form:"reference_type"`
	ReferenceID   string     `json:"reference_id" form:"reference_id"`
	StartDate     *time.Time `json:"start_date" form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate       *time.Time `json:"end_date" form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
	Page          int        `json:"page" form:"page"`
	PageSize      int        `json:"page_size" form:"page_size"`
}

type ListMovementsResponse struct {
	Items []model.StockMovement `json:"items"`
	Total int32                 `json:"total"`
}

func (r *AppendMovementRequest) toInput(tenantID, actorID string) *dto.AppendMovementInput {
	return &dto.AppendMovementInput{
		TenantID:      tenantID,
		ProductID:     r.ProductID,
		LocationID:    r.LocationID,
		Type:          model.MovementType(r.MovementType),
		Quantity:      r.Quantity,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		Notes:         r.Notes,
		ActorID:       actorID,
	}
}

func (r *ListMovementsRequest) toFilters(tenantID string) *dto.MovementFilters {
	return &dto.MovementFilters{
		TenantID:      tenantID,
		ProductID:     r.ProductID,
		LocationID:    r.LocationID,
		MovementType:  model.MovementType(r.MovementType),
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Page:          r.Page,
		PageSize:      r.PageSize,
	}
}
