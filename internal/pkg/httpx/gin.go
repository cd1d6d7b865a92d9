// Package httpx holds the gin plumbing shared by the REST handlers.
package httpx

import (
	"net/http"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-ledger-service/internal/tenant"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const tenantKey = "tenant"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRouter returns a gin engine with recovery, request logging and tenant resolution.
func NewRouter(log logger.ZapLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return r
}

func RequestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// TenantMiddleware rejects requests without a tenant header.
func TenantMiddleware(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := tenant.FromHeaders(c.GetHeader)
		if tc.TenantID == "" {
			Error(c, tr, apperror.ErrMissingTenant)
			c.Abort()
			return
		}
		c.Set(tenantKey, tc)
		c.Request = c.Request.WithContext(tenant.WithContext(c.Request.Context(), tc))
		c.Next()
	}
}

func Tenant(c *gin.Context) tenant.Context {
	if v, ok := c.Get(tenantKey); ok {
		return v.(tenant.Context)
	}
	return tenant.Context{}
}

// Error writes err as a JSON body with the mapped HTTP status.
func Error(c *gin.Context, tr *i18n.Translator, err error) {
	c.JSON(apperror.HTTPStatus(err), ErrorResponse{
		Code:    apperror.Code(err),
		Message: rpc.Message(tr, err, c.GetHeader("Accept-Language")),
	})
}
