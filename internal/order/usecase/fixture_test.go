package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	catalogrepo "github.com/fekuna/omnipos-ledger-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/memstore"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
	orderrepo "github.com/fekuna/omnipos-ledger-service/internal/order/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/stock"
	stockdto "github.com/fekuna/omnipos-ledger-service/internal/stock/dto"
	stockrepo "github.com/fekuna/omnipos-ledger-service/internal/stock/repository"
	stockusecase "github.com/fekuna/omnipos-ledger-service/internal/stock/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	tenantID    = "tenant-1"
	otherTenant = "tenant-2"
	productA    = "prod-a"
	productB    = "prod-b"
	inactiveP   = "prod-inactive"
	locationID  = "loc-1"
	defaultLoc  = "loc-default"
	customerID  = "cust-1"
	actorID     = "user-1"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(ctx context.Context, eventType string, o *model.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// failingRepo fails the chosen write after stock has already been deducted.
type failingRepo struct {
	order.Repository
	failCreate      bool
	failStatusEvent bool
}

var errInjected = errors.New("injected failure")

func (r *failingRepo) Create(ctx context.Context, o *model.Order) error {
	if r.failCreate {
		return errInjected
	}
	return r.Repository.Create(ctx, o)
}

func (r *failingRepo) AppendStatusEvent(ctx context.Context, ev *model.OrderStatusEvent) error {
	if r.failStatusEvent {
		return errInjected
	}
	return r.Repository.AppendStatusEvent(ctx, ev)
}

type fixture struct {
	uc        order.UseCase
	stock     stock.UseCase
	repo      *orderrepo.MemoryRepository
	store     *memstore.Store
	publisher *recordingPublisher
}

type fixtureOption struct {
	cfg  Config
	wrap func(order.Repository) order.Repository
	opts []Option
}

func newFixture(t *testing.T, fo ...func(*fixtureOption)) *fixture {
	t.Helper()

	o := &fixtureOption{cfg: Config{StrictTransitions: true, RestockOnCancel: true}}
	for _, fn := range fo {
		fn(o)
	}

	store := memstore.New()
	cat := catalogrepo.NewMemoryRepository()
	for _, p := range []model.Product{
		{BaseModel: model.BaseModel{ID: productA}, TenantID: tenantID, Name: "Espresso", BasePrice: decimal.NewFromInt(10), IsActive: true},
		{BaseModel: model.BaseModel{ID: productB}, TenantID: tenantID, Name: "Croissant", BasePrice: decimal.NewFromInt(5), IsActive: true},
		{BaseModel: model.BaseModel{ID: inactiveP}, TenantID: tenantID, Name: "Retired", IsActive: false},
	} {
		cat.AddProduct(p)
	}
	cat.AddLocation(model.Location{BaseModel: model.BaseModel{ID: locationID}, TenantID: tenantID, IsActive: true})
	cat.AddLocation(model.Location{BaseModel: model.BaseModel{ID: defaultLoc}, TenantID: tenantID, IsDefault: true, IsActive: true})
	cat.AddCustomer(model.Customer{BaseModel: model.BaseModel{ID: customerID}, TenantID: tenantID, Name: "Ana"})

	stockUC := stockusecase.NewStockUseCase(stockrepo.NewMemoryRepository(store), cat, store, logger.NewNop())

	repo := orderrepo.NewMemoryRepository(store)
	var port order.Repository = repo
	if o.wrap != nil {
		port = o.wrap(repo)
	}

	pub := &recordingPublisher{}
	opts := append([]Option{
		WithPublisher(pub),
		WithClock(func() time.Time { return fixedNow }),
	}, o.opts...)

	return &fixture{
		uc:        NewOrderUseCase(port, stockUC, cat, store, o.cfg, logger.NewNop(), opts...),
		stock:     stockUC,
		repo:      repo,
		store:     store,
		publisher: pub,
	}
}

func (f *fixture) seed(t *testing.T, product, location string, qty int64) {
	t.Helper()
	_, err := f.stock.AppendMovement(context.Background(), &stockdto.AppendMovementInput{
		TenantID:      tenantID,
		ProductID:     product,
		LocationID:    location,
		Type:          model.MovementIn,
		Quantity:      qty,
		ReferenceType: "goods_receipt",
	})
	require.NoError(t, err)
}

func (f *fixture) onHand(t *testing.T, product, location string) int64 {
	t.Helper()
	rec, err := f.stock.GetStock(context.Background(), tenantID, product, location)
	require.NoError(t, err)
	return rec.Quantity
}

func (f *fixture) movements(t *testing.T, referenceType string) []model.StockMovement {
	t.Helper()
	items, _, err := f.stock.ListMovements(context.Background(), &stockdto.MovementFilters{
		TenantID:      tenantID,
		ReferenceType: referenceType,
	})
	require.NoError(t, err)
	return items
}

func (f *fixture) orderCount() int {
	n := 0
	_ = f.store.Do(context.Background(), func(st *memstore.State) error {
		n = len(st.Orders)
		return nil
	})
	return n
}

func line(product string, qty int64, price string) dto.CheckoutItemInput {
	return dto.CheckoutItemInput{
		ProductID: product,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func checkoutInput(items ...dto.CheckoutItemInput) *dto.CheckoutInput {
	return &dto.CheckoutInput{
		TenantID:   tenantID,
		LocationID: locationID,
		ActorID:    actorID,
		Items:      items,
	}
}

func (f *fixture) checkout(t *testing.T, items ...dto.CheckoutItemInput) *model.Order {
	t.Helper()
	o, err := f.uc.Checkout(context.Background(), checkoutInput(items...))
	require.NoError(t, err)
	return o
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
