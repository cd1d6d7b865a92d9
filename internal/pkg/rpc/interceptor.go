package rpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/tenant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const healthPrefix = "/grpc.health.v1.Health/"

// TenantInterceptor resolves the tenant context from metadata once per call
// and rejects calls without a tenant.
func TenantInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		tc := tenant.FromMetadata(md)
		if tc.TenantID == "" {
			return nil, status.Error(apperror.GRPCCode(apperror.ErrMissingTenant), apperror.ErrMissingTenant.Error())
		}
		return handler(tenant.WithContext(ctx, tc), req)
	}
}

// ErrorInterceptor logs each call and converts domain errors into gRPC
// statuses with a localized message.
func ErrorInterceptor(tr *i18n.Translator, log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err == nil {
			log.Debug("rpc ok", zap.String("method", info.FullMethod), zap.Duration("took", time.Since(start)))
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			return nil, err
		}

		code := apperror.GRPCCode(err)
		fields := []zap.Field{zap.String("method", info.FullMethod), zap.String("code", code.String()), zap.Error(err)}
		if apperror.Code(err) == "Internal" {
			log.Error("rpc failed", fields...)
		} else {
			log.Warn("rpc rejected", fields...)
		}

		var langs []string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			langs = md.Get("accept-language")
		}
		msg := Message(tr, err, langs...)
		return nil, status.Error(code, msg)
	}
}

// Message renders err for clients. Internal errors never leak their text.
func Message(tr *i18n.Translator, err error, langs ...string) string {
	code := apperror.Code(err)
	data := map[string]interface{}{}
	var stockErr *apperror.InsufficientStockError
	if errors.As(err, &stockErr) {
		data["ProductID"] = stockErr.ProductID
		data["Available"] = stockErr.Available
	}

	msg := ""
	if tr != nil {
		msg = tr.Localize(code, data, langs...)
	}
	switch {
	case msg == "" && code == "Internal":
		return "internal server error"
	case msg == "":
		return err.Error()
	case code == "InvalidInput":
		return msg + ": " + err.Error()
	}
	return msg
}
