package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	catalogrepo "github.com/fekuna/omnipos-ledger-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
	orderrepo "github.com/fekuna/omnipos-ledger-service/internal/order/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-ledger-service/internal/stock"
	stockdto "github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	stockrepo "github.com/fekuna/omnipos-ledger-service/internal/stock/repository"
	stockusecase "github.com/fekuna/omnipos-ledger-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-ledger-service/migrations"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pgFixture runs the use cases against the production repositories. Every
// fixture works in its own tenant, so runs never see each other's rows.
type pgFixture struct {
	db       *sqlx.DB
	uc       order.UseCase
	stock    stock.UseCase
	tenant   string
	product  string
	location string
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := sqlx.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	require.NoError(t, migrations.Apply(ctx, db))

	f := &pgFixture{
		db:       db,
		tenant:   "tenant-" + uuid.NewString(),
		product:  "sku-" + uuid.NewString(),
		location: "store-" + uuid.NewString(),
	}
	_, err = db.ExecContext(ctx, `INSERT INTO products (id, tenant_id, name, base_price) VALUES ($1, $2, 'Espresso', 10)`, f.product, f.tenant)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO locations (id, tenant_id, name, is_default) VALUES ($1, $2, 'Main', TRUE)`, f.location, f.tenant)
	require.NoError(t, err)

	tx := postgres.NewTxManager(db, postgres.TxOptions{Timeout: 30 * time.Second, MaxRetries: 50}, logger.NewNop())
	cat := catalogrepo.NewPGRepository(db)
	f.stock = stockusecase.NewStockUseCase(stockrepo.NewPGRepository(db), cat, tx, logger.NewNop())
	f.uc = NewOrderUseCase(orderrepo.NewPGRepository(db), f.stock, cat, tx,
		Config{StrictTransitions: true, RestockOnCancel: true}, logger.NewNop())
	return f
}

func (f *pgFixture) seed(t *testing.T, qty int64) {
	t.Helper()
	_, err := f.stock.AppendMovement(context.Background(), &stockdto.AppendMovementInput{
		TenantID:      f.tenant,
		ProductID:     f.product,
		LocationID:    f.location,
		Type:          model.MovementIn,
		Quantity:      qty,
		ReferenceType: "goods_receipt",
	})
	require.NoError(t, err)
}

func (f *pgFixture) onHand(t *testing.T) int64 {
	t.Helper()
	rec, err := f.stock.GetStock(context.Background(), f.tenant, f.product, f.location)
	require.NoError(t, err)
	return rec.Quantity
}

func (f *pgFixture) input(qty int64, price string) *dto.CheckoutInput {
	return &dto.CheckoutInput{
		TenantID: f.tenant,
		ActorID:  "cashier-1",
		Items:    []dto.CheckoutItemInput{{ProductID: f.product, Quantity: qty, UnitPrice: dec(price)}},
	}
}

func TestPostgresConcurrentCheckoutNeverOversells(t *testing.T) {
	f := newPGFixture(t)
	f.seed(t, 5)

	const workers = 8
	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int64
		insufficient atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Checkout(context.Background(), f.input(2, "1"))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperror.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2), succeeded.Load())
	assert.Equal(t, int64(workers-2), insufficient.Load())
	assert.Equal(t, int64(1), f.onHand(t))

	var orders, outs int
	require.NoError(t, f.db.Get(&orders, `SELECT count(*) FROM orders WHERE tenant_id = $1`, f.tenant))
	require.NoError(t, f.db.Get(&outs, `SELECT count(*) FROM stock_movements WHERE tenant_id = $1 AND reference_type = 'order'`, f.tenant))
	assert.Equal(t, 2, orders)
	assert.Equal(t, 2, outs)
}

func TestPostgresOrderRoundTrip(t *testing.T) {
	f := newPGFixture(t)
	f.seed(t, 10)
	ctx := context.Background()

	input := f.input(3, "12.35")
	input.DiscountAmount = dec("1.05")
	input.ShippingCost = dec("4.99")
	tax := dec("3.71")
	input.TaxAmount = &tax
	input.IdempotencyKey = "cart-" + uuid.NewString()

	created, err := f.uc.Checkout(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, f.location, created.LocationID, "default location")

	got, err := f.uc.GetOrder(ctx, f.tenant, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("37.05")), got.Subtotal.String())
	assert.True(t, got.Total.Equal(dec("44.70")), got.Total.String())
	assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount).Sub(got.DiscountAmount).Add(got.ShippingCost)))
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(3), got.Items[0].Quantity)
	assert.Equal(t, int64(7), f.onHand(t))

	// the database key alone answers a repeated checkout
	again, err := f.uc.Checkout(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, int64(7), f.onHand(t))

	paid, err := f.uc.AddPayment(ctx, &dto.AddPaymentInput{TenantID: f.tenant, OrderID: created.ID, Amount: dec("20.00"), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartial, paid.PaymentStatus)
	assert.True(t, paid.DueAmount.Equal(dec("24.70")))

	_, err = f.uc.UpdateStatus(ctx, &dto.UpdateStatusInput{TenantID: f.tenant, OrderID: created.ID, Status: model.OrderReady})
	require.NoError(t, err)
	cancelled, err := f.uc.Cancel(ctx, &dto.CancelInput{TenantID: f.tenant, OrderID: created.ID, Reason: "customer left"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, int64(10), f.onHand(t))

	_, err = f.uc.Cancel(ctx, &dto.CancelInput{TenantID: f.tenant, OrderID: created.ID})
	assert.ErrorIs(t, err, apperror.ErrAlreadyCancelled)

	events, err := f.uc.ListStatusEvents(ctx, f.tenant, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.OrderPending, events[0].Status)
	assert.Equal(t, model.OrderReady, events[1].Status)
	assert.Equal(t, model.OrderCancelled, events[2].Status)

	payments, err := f.uc.ListPayments(ctx, f.tenant, created.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(dec("20")))
}

func TestPostgresUnknownIDsAreNotFound(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	_, err := f.uc.GetOrder(ctx, f.tenant, "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)

	input := f.input(1, "1")
	input.Items[0].ProductID = "no-such-product"
	_, err = f.uc.Checkout(ctx, input)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	input = f.input(1, "1")
	input.TenantID = "some other tenant"
	_, err = f.uc.Checkout(ctx, input)
	assert.ErrorIs(t, err, apperror.ErrLocationNotFound)
}
