package handler

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-ledger-service/internal/tenant"
	"google.golang.org/grpc"
)

const OrderServiceName = "omnipos.ledger.v1.OrderService"

type OrderServiceServer interface {
	Checkout(context.Context, *CheckoutRequest) (*OrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*OrderResponse, error)
	UpdateStatus(context.Context, *UpdateStatusRequest) (*OrderResponse, error)
	AddPayment(context.Context, *AddPaymentRequest) (*OrderResponse, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*OrderResponse, error)
	ListStatusEvents(context.Context, *GetOrderRequest) (*ListStatusEventsResponse, error)
	ListPayments(context.Context, *GetOrderRequest) (*ListPaymentsResponse, error)
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.UnaryMethod(OrderServiceName, "Checkout", func(srv interface{}, ctx context.Context, req *CheckoutRequest) (*OrderResponse, error) {
			return srv.(OrderServiceServer).Checkout(ctx, req)
		}),
		rpc.UnaryMethod(OrderServiceName, "GetOrder", func(srv interface{}, ctx context.Context, req *GetOrderRequest) (*OrderResponse, error) {
			return srv.(OrderServiceServer).GetOrder(ctx, req)
		}),
		rpc.UnaryMethod(OrderServiceName, "UpdateStatus", func(srv interface{}, ctx context.Context, req *UpdateStatusRequest) (*OrderResponse, error) {
			return srv.(OrderServiceServer).UpdateStatus(ctx, req)
		}),
		rpc.UnaryMethod(OrderServiceName, "AddPayment", func(srv interface{}, ctx context.Context, req *AddPaymentRequest) (*OrderResponse, error) {
			return srv.(OrderServiceServer).AddPayment(ctx, req)
		}),
		rpc.UnaryMethod(OrderServiceName, "CancelOrder", func(srv interface{}, ctx context.Context, req *CancelOrderRequest) (*OrderResponse, error) {
			return srv.(OrderServiceServer).CancelOrder(ctx, req)
		}),
		rpc.UnaryMethod(OrderServiceName, "ListStatusEvents", func(srv interface{}, ctx context.Context, req *GetOrderRequest) (*ListStatusEventsResponse, error) {
			return srv.(OrderServiceServer).ListStatusEvents(ctx, req)
		}),
		rpc.UnaryMethod(OrderServiceName, "ListPayments", func(srv interface{}, ctx context.Context, req *GetOrderRequest) (*ListPaymentsResponse, error) {
			return srv.(OrderServiceServer).ListPayments(ctx, req)
		}),
	},
	Metadata: "omnipos/ledger/v1/order",
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderServiceDesc, srv)
}

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) Checkout(ctx context.Context, req *CheckoutRequest) (*OrderResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	o, err := h.uc.Checkout(ctx, req.toInput(tc.TenantID, tc.ActorID))
	if err != nil {
		return nil, err
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	o, err := h.uc.GetOrder(ctx, tc.TenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*OrderResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	o, err := h.uc.UpdateStatus(ctx, &dto.UpdateStatusInput{
		TenantID: tc.TenantID,
		OrderID:  req.OrderID,
		Status:   model.OrderStatus(req.Status),
		Notes:    req.Notes,
		ActorID:  tc.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) AddPayment(ctx context.Context, req *AddPaymentRequest) (*OrderResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	o, err := h.uc.AddPayment(ctx, &dto.AddPaymentInput{
		TenantID:  tc.TenantID,
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		ActorID:   tc.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) CancelOrder(ctx context.Context, req *CancelOrderRequest) (*OrderResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	o, err := h.uc.Cancel(ctx, &dto.CancelInput{
		TenantID: tc.TenantID,
		OrderID:  req.OrderID,
		Reason:   req.Reason,
		ActorID:  tc.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) ListStatusEvents(ctx context.Context, req *GetOrderRequest) (*ListStatusEventsResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	events, err := h.uc.ListStatusEvents(ctx, tc.TenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	return &ListStatusEventsResponse{Items: events}, nil
}

func (h *OrderHandler) ListPayments(ctx context.Context, req *GetOrderRequest) (*ListPaymentsResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	payments, err := h.uc.ListPayments(ctx, tc.TenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	return &ListPaymentsResponse{Items: payments}, nil
}
