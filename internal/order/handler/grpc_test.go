package handler

import (
	"context"
	"net"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func dialOrderService(t *testing.T) *grpc.ClientConn {
	t.Helper()
	env := newTestEnv(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		rpc.TenantInterceptor(),
		rpc.ErrorInterceptor(i18n.New(), logger.NewNop()),
	))
	RegisterOrderServiceServer(srv, NewOrderHandler(env.orders, logger.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOrderServiceOverGRPC(t *testing.T) {
	conn := dialOrderService(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-tenant-id", "t1", "x-actor-id", "u1")

	var created OrderResponse
	err := conn.Invoke(ctx, "/"+OrderServiceName+"/Checkout", &CheckoutRequest{
		Items: []CheckoutItem{{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(5)}},
	}, &created)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, created.Order.Status)

	var cancelled OrderResponse
	err = conn.Invoke(ctx, "/"+OrderServiceName+"/CancelOrder", &CancelOrderRequest{OrderID: created.Order.ID}, &cancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Order.Status)

	err = conn.Invoke(ctx, "/"+OrderServiceName+"/CancelOrder", &CancelOrderRequest{OrderID: created.Order.ID}, &cancelled)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestOrderServiceRequiresTenant(t *testing.T) {
	conn := dialOrderService(t)

	var resp OrderResponse
	err := conn.Invoke(context.Background(), "/"+OrderServiceName+"/GetOrder", &GetOrderRequest{OrderID: "x"}, &resp)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
