package handler

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-ledger-service/internal/stock"
	"github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/tenant"
	"google.golang.org/grpc"
)

const StockServiceName = "omnipos.ledger.v1.StockService"

type StockServiceServer interface {
	AppendMovement(context.Context, *AppendMovementRequest) (*MovementResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	GetStock(context.Context, *GetStockRequest) (*StockResponse, error)
	CheckAvailability(context.Context, *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error)
	ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error)
}

var StockServiceDesc = grpc.ServiceDesc{
	ServiceName: StockServiceName,
	HandlerType: (*StockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.UnaryMethod(StockServiceName, "AppendMovement", func(srv interface{}, ctx context.Context, req *AppendMovementRequest) (*MovementResponse, error) {
			return srv.(StockServiceServer).AppendMovement(ctx, req)
		}),
		rpc.UnaryMethod(StockServiceName, "Transfer", func(srv interface{}, ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
			return srv.(StockServiceServer).Transfer(ctx, req)
		}),
		rpc.UnaryMethod(StockServiceName, "GetStock", func(srv interface{}, ctx context.Context, req *GetStockRequest) (*StockResponse, error) {
			return srv.(StockServiceServer).GetStock(ctx, req)
		}),
		rpc.UnaryMethod(StockServiceName, "CheckAvailability", func(srv interface{}, ctx context.Context, req *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
			return srv.(StockServiceServer).CheckAvailability(ctx, req)
		}),
		rpc.UnaryMethod(StockServiceName, "ListMovements", func(srv interface{}, ctx context.Context, req *ListMovementsRequest) (*ListMovementsResponse, error) {
			return srv.(StockServiceServer).ListMovements(ctx, req)
		}),
	},
	Metadata: "omnipos/ledger/v1/stock",
}

func RegisterStockServiceServer(s grpc.ServiceRegistrar, srv StockServiceServer) {
	s.RegisterService(&StockServiceDesc, srv)
}

// StockHandler serves the stock ledger over gRPC. Domain errors are returned
// as-is and mapped to statuses by rpc.ErrorInterceptor.
type StockHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc stock.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *StockHandler) AppendMovement(ctx context.Context, req *AppendMovementRequest) (*MovementResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	m, err := h.uc.AppendMovement(ctx, req.toInput(tc.TenantID, tc.ActorID))
	if err != nil {
		return nil, err
	}
	return &MovementResponse{Movement: m}, nil
}

func (h *StockHandler) Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	movements, err := h.uc.Transfer(ctx, &dto.TransferInput{
		TenantID:         tc.TenantID,
		ProductID:        req.ProductID,
		SourceLocationID: req.SourceLocationID,
		TargetLocationID: req.TargetLocationID,
		Quantity:         req.Quantity,
		Notes:            req.Notes,
		ActorID:          tc.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &TransferResponse{Movements: movements}, nil
}

func (h *StockHandler) GetStock(ctx context.Context, req *GetStockRequest) (*StockResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	rec, err := h.uc.GetStock(ctx, tc.TenantID, req.ProductID, req.LocationID)
	if err != nil {
		return nil, err
	}
	return &StockResponse{Stock: rec}, nil
}

func (h *StockHandler) CheckAvailability(ctx context.Context, req *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	results, err := h.uc.CheckAvailability(ctx, tc.TenantID, req.Items)
	if err != nil {
		return nil, err
	}
	return &CheckAvailabilityResponse{Items: results}, nil
}

func (h *StockHandler) ListMovements(ctx context.Context, req *ListMovementsRequest) (*ListMovementsResponse, error) {
	tc, _ := tenant.FromContext(ctx)
	items, count, err := h.uc.ListMovements(ctx, req.toFilters(tc.TenantID))
	if err != nil {
		return nil, err
	}
	return &ListMovementsResponse{Items: items, Total: int32(count)}, nil
}
