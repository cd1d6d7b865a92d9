package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/catalog"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/txn"
	"github.com/fekuna/omnipos-ledger-service/internal/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	// IdempotencyTTL keeps a committed checkout key.
	IdempotencyTTL    time.Duration
	// InFlightTTL bounds a reservation whose checkout never completed.
	InFlightTTL       time.Duration
	StrictTransitions bool
	RestockOnCancel   bool
}

type Option func(*orderUseCase)

func WithIdempotencyStore(s order.IdempotencyStore) Option {
	return func(uc *orderUseCase) { uc.idem = s }
}

func WithPublisher(p order.EventPublisher) Option {
	return func(uc *orderUseCase) { uc.publisher = p }
}

func WithIndexer(i order.Indexer) Option {
	return func(uc *orderUseCase) { uc.indexer = i }
}

func WithClock(now func() time.Time) Option {
	return func(uc *orderUseCase) { uc.now = now }
}

type orderUseCase struct {
	repo      order.Repository
	stock     stock.UseCase
	catalog   catalog.Lookup
	tx        txn.Transactor
	idem      order.IdempotencyStore
	publisher order.EventPublisher
	indexer   order.Indexer
	cfg       Config
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewOrderUseCase(repo order.Repository, stockUC stock.UseCase, lookup catalog.Lookup, tx txn.Transactor, cfg Config, log logger.ZapLogger, opts ...Option) order.UseCase {
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.InFlightTTL <= 0 {
		cfg.InFlightTTL = 30 * time.Second
	}
	uc := &orderUseCase{
		repo:    repo,
		stock:   stockUC,
		catalog: lookup,
		tx:      tx,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *orderUseCase) GetOrder(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.ErrOrderNotFound
	}
	return o, nil
}

func (uc *orderUseCase) ListStatusEvents(ctx context.Context, tenantID, orderID string) ([]model.OrderStatusEvent, error) {
	if _, err := uc.GetOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	return uc.repo.ListStatusEvents(ctx, tenantID, orderID)
}

func (uc *orderUseCase) ListPayments(ctx context.Context, tenantID, orderID string) ([]model.Payment, error) {
	if _, err := uc.GetOrder(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	return uc.repo.ListPayments(ctx, tenantID, orderID)
}

// lockOrder loads the order for update inside a unit of work.
func (uc *orderUseCase) lockOrder(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	o, err := uc.repo.FindByIDForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.ErrOrderNotFound
	}
	return o, nil
}

func (uc *orderUseCase) recordStatus(ctx context.Context, o *model.Order, notes, actorID string, at time.Time) error {
	return uc.repo.AppendStatusEvent(ctx, &model.OrderStatusEvent{
		ID:        uuid.New().String(),
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		Status:    o.Status,
		Notes:     notes,
		ActorID:   optional(actorID),
		CreatedAt: at,
	})
}

// afterCommit publishes and indexes a committed order. Failures are logged
// and never undo the commit.
func (uc *orderUseCase) afterCommit(eventType string, o *model.Order) {
	if uc.publisher == nil && uc.indexer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderEvent(ctx, eventType, o); err != nil {
			uc.logger.Error("failed to publish order event",
				zap.String("order_id", o.ID),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}
	if uc.indexer != nil {
		if err := uc.indexer.IndexOrder(ctx, o); err != nil {
			uc.logger.Error("failed to index order", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
