package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/i18n"
	"github.com/gin-gonic/gin"
)

func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup, tr *i18n.Translator) {
	rg.POST("/orders", h.httpCheckout(tr))
	rg.GET("/orders/:id", h.httpGetOrder(tr))
	rg.PUT("/orders/:id/status", h.httpUpdateStatus(tr))
	rg.POST("/orders/:id/payments", h.httpAddPayment(tr))
	rg.GET("/orders/:id/payments", h.httpListPayments(tr))
	rg.GET("/orders/:id/events", h.httpListStatusEvents(tr))
	rg.DELETE("/orders/:id", h.httpCancel(tr))
}

func (h *OrderHandler) httpCheckout(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, tr, apperror.Invalid("%v", err))
			return
		}
		if req.IdempotencyKey == "" {
			req.IdempotencyKey = c.GetHeader("Idempotency-Key")
		}
		resp, err := h.Checkout(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *OrderHandler) httpGetOrder(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.GetOrder(c.Request.Context(), &GetOrderRequest{OrderID: c.Param("id")})
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *OrderHandler) httpUpdateStatus(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, tr, apperror.Invalid("%v", err))
			return
		}
		req.OrderID = c.Param("id")
		resp, err := h.UpdateStatus(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *OrderHandler) httpAddPayment(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, tr, apperror.Invalid("%v", err))
			return
		}
		req.OrderID = c.Param("id")
		resp, err := h.AddPayment(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *OrderHandler) httpListPayments(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.ListPayments(c.Request.Context(), &GetOrderRequest{OrderID: c.Param("id")})
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *OrderHandler) httpListStatusEvents(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.ListStatusEvents(c.Request.Context(), &GetOrderRequest{OrderID: c.Param("id")})
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// httpCancel takes an optional JSON body carrying the reason.
func (h *OrderHandler) httpCancel(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelOrderRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.Error(c, tr, apperror.Invalid("%v", err))
				return
			}
		}
		req.OrderID = c.Param("id")
		resp, err := h.CancelOrder(c.Request.Context(), &req)
		if err != nil {
			httpx.Error(c, tr, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
