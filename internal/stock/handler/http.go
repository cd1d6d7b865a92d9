package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/i18n"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the REST face of the stock service on rg. The gin
// handlers reuse the gRPC handler methods.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup, tr *i18n.Translator) {
	rg.POST("/stock/movements", h.httpAppendMovement(tr))
	rg.POST("/stock/transfers", h.httpTransfer(tr))
	rg.POST("/stock/check-availability", h.httpCheckAvailability(tr))
	rg.GET("/stock/:product_id/:location_id", h.httpGetStock(tr))
	rg.GET("/stock-movements", h.httpListMovements(tr))
}

func (h *StockHandler) httpAppendMovement(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AppendMovementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, tr, apperror.Invalid("%v", err))
			return
		}
		resp, err := h.AppendMovement(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *StockHandler) httpTransfer(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, tr, apperror.Invalid("%v", err))
			return
		}
		resp, err := h.Transfer(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *StockHandler) httpCheckAvailability(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckAvailabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, tr, apperror.Invalid("%v", err))
			return
		}
		resp, err := h.CheckAvailability(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *StockHandler) httpGetStock(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.GetStock(c.Request.Context(), &GetStockRequest{
			ProductID:  c.Param("product_id"),
			LocationID: c.Param("location_id"),
		})
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *StockHandler) httpListMovements(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListMovementsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			httpx.Error(c, tr, apperror.Invalid("%v", err))
			return
		}
		resp, err := h.ListMovements(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
