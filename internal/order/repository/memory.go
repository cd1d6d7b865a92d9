package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/memstore"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type MemoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

func (r *MemoryRepository) Create(ctx context.Context, o *model.Order) error {
	return r.store.Do(ctx, func(st *memstore.State) error {
		if _, ok := st.Orders[o.ID]; ok {
			return fmt.Errorf("failed to insert order: %s already exists", o.ID)
		}
		if o.IdempotencyKey != nil {
			for _, existing := range st.Orders {
				if existing.TenantID == o.TenantID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *o.IdempotencyKey {
					return fmt.Errorf("%w: idempotency key already used", apperror.ErrDuplicateRequest)
				}
			}
		}
		stored := *o
		stored.Items = append([]model.OrderItem(nil), o.Items...)
		st.Orders[o.ID] = stored
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	var out *model.Order
	err := r.store.Do(ctx, func(st *memstore.State) error {
		if o, ok := st.Orders[orderID]; ok && o.TenantID == tenantID {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

// FindByIDForUpdate needs no extra locking: units of work are already serialized.
func (r *MemoryRepository) FindByIDForUpdate(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	return r.FindByID(ctx, tenantID, orderID)
}

func (r *MemoryRepository) FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*model.Order, error) {
	var out *model.Order
	err := r.store.Do(ctx, func(st *memstore.State) error {
		for _, o := range st.Orders {
			if o.TenantID == tenantID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
				out = copyOrder(o)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MemoryRepository) Update(ctx context.Context, o *model.Order) error {
	return r.store.Do(ctx, func(st *memstore.State) error {
		cur, ok := st.Orders[o.ID]
		if !ok || cur.TenantID != o.TenantID {
			return fmt.Errorf("%w: %s", apperror.ErrOrderNotFound, o.ID)
		}
		cur.Status = o.Status
		cur.PaymentStatus = o.PaymentStatus
		cur.PaidAmount = o.PaidAmount
		cur.DueAmount = o.DueAmount
		cur.IsDeliveryReady = o.IsDeliveryReady
		cur.ReadyAt = o.ReadyAt
		cur.DeliveredAt = o.DeliveredAt
		cur.CancelledAt = o.CancelledAt
		cur.CancelReason = o.CancelReason
		cur.UpdatedAt = o.UpdatedAt
		st.Orders[o.ID] = cur
		return nil
	})
}

func (r *MemoryRepository) NextSequence(ctx context.Context, tenantID string, day time.Time) (int64, error) {
	var seq int64
	err := r.store.Do(ctx, func(st *memstore.State) error {
		key := tenantID + "|" + day.Format("2006-01-02")
		st.Sequences[key]++
		seq = st.Sequences[key]
		return nil
	})
	return seq, err
}

func (r *MemoryRepository) AppendStatusEvent(ctx context.Context, ev *model.OrderStatusEvent) error {
	return r.store.Do(ctx, func(st *memstore.State) error {
		stored := *ev
		stored.Seq = st.NextEventSeq()
		st.Events = append(st.Events, stored)
		return nil
	})
}

func (r *MemoryRepository) ListStatusEvents(ctx context.Context, tenantID, orderID string) ([]model.OrderStatusEvent, error) {
	events := []model.OrderStatusEvent{}
	err := r.store.Do(ctx, func(st *memstore.State) error {
		for _, ev := range st.Events {
			if ev.TenantID == tenantID && ev.OrderID == orderID {
				events = append(events, ev)
			}
		}
		return nil
	})
	return events, err
}

func (r *MemoryRepository) InsertPayment(ctx context.Context, p *model.Payment) error {
	return r.store.Do(ctx, func(st *memstore.State) error {
		st.Payments = append(st.Payments, *p)
		return nil
	})
}

func (r *MemoryRepository) ListPayments(ctx context.Context, tenantID, orderID string) ([]model.Payment, error) {
	payments := []model.Payment{}
	err := r.store.Do(ctx, func(st *memstore.State) error {
		for _, p := range st.Payments {
			if p.TenantID == tenantID && p.OrderID == orderID {
				payments = append(payments, p)
			}
		}
		return nil
	})
	return payments, err
}

func copyOrder(o model.Order) *model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return &o
}
