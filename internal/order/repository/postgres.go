package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

const idempotencyConstraint = "orders_tenant_idempotency_key"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	q := postgres.Conn(ctx, r.DB)

	query := `
        INSERT INTO orders (
            id, tenant_id, order_number, location_id, customer_id,
            status, payment_status, subtotal, tax_amount, discount_amount,
            shipping_cost, total, paid_amount, due_amount, is_delivery_ready,
            ready_at, delivered_at, cancelled_at, cancel_reason, notes,
            idempotency_key, created_by, created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :order_number, :location_id, :customer_id,
            :status, :payment_status, :subtotal, :tax_amount, :discount_amount,
            :shipping_cost, :total, :paid_amount, :due_amount, :is_delivery_ready,
            :ready_at, :delivered_at, :cancelled_at, :cancel_reason, :notes,
            :idempotency_key, :created_by, :created_at, :updated_at
        )
    `
	if _, err := q.NamedExecContext(ctx, query, o); err != nil {
		if postgres.IsUniqueViolation(err, idempotencyConstraint) {
			return fmt.Errorf("%w: idempotency key already used", apperror.ErrDuplicateRequest)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (
            id, order_id, line_no, product_id, quantity, unit_price, discount, tax, line_total
        )
        VALUES (
            :id, :order_id, :line_no, :product_id, :quantity, :unit_price, :discount, :tax, :line_total
        )
    `
	for i := range o.Items {
		if _, err := q.NamedExecContext(ctx, itemQuery, &o.Items[i]); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	return r.find(ctx, `SELECT * FROM orders WHERE tenant_id = $1 AND id = $2`, tenantID, orderID)
}

func (r *PGRepository) FindByIDForUpdate(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	return r.find(ctx, `SELECT * FROM orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, orderID)
}

func (r *PGRepository) FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*model.Order, error) {
	return r.find(ctx, `SELECT * FROM orders WHERE tenant_id = $1 AND idempotency_key = $2`, tenantID, key)
}

func (r *PGRepository) find(ctx context.Context, query string, args ...interface{}) (*model.Order, error) {
	q := postgres.Conn(ctx, r.DB)

	var o model.Order
	if err := q.GetContext(ctx, &o, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items := []model.OrderItem{}
	err := q.SelectContext(ctx, &items, `SELECT * FROM order_items WHERE order_id = $1 ORDER BY line_no`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	o.Items = items
	return &o, nil
}

func (r *PGRepository) Update(ctx context.Context, o *model.Order) error {
	query := `
        UPDATE orders SET
            status = :status,
            payment_status = :payment_status,
            paid_amount = :paid_amount,
            due_amount = :due_amount,
            is_delivery_ready = :is_delivery_ready,
            ready_at = :ready_at,
            delivered_at = :delivered_at,
            cancelled_at = :cancelled_at,
            cancel_reason = :cancel_reason,
            updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id
    `
	res, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, o)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrOrderNotFound, o.ID)
	}
	return nil
}

func (r *PGRepository) NextSequence(ctx context.Context, tenantID string, day time.Time) (int64, error) {
	query := `
        INSERT INTO order_sequences (tenant_id, day, last_value)
        VALUES ($1, $2, 1)
        ON CONFLICT (tenant_id, day)
        DO UPDATE SET last_value = order_sequences.last_value + 1
        RETURNING last_value
    `
	var seq int64
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &seq, query, tenantID, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order number: %w", err)
	}
	return seq, nil
}

func (r *PGRepository) AppendStatusEvent(ctx context.Context, ev *model.OrderStatusEvent) error {
	query := `
        INSERT INTO order_status_events (id, tenant_id, order_id, status, notes, actor_id, created_at)
        VALUES (:id, :tenant_id, :order_id, :status, :notes, :actor_id, :created_at)
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, ev); err != nil {
		return fmt.Errorf("failed to append status event: %w", err)
	}
	return nil
}

func (r *PGRepository) ListStatusEvents(ctx context.Context, tenantID, orderID string) ([]model.OrderStatusEvent, error) {
	events := []model.OrderStatusEvent{}
	query := `SELECT * FROM order_status_events WHERE tenant_id = $1 AND order_id = $2 ORDER BY seq`
	err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &events, query, tenantID, orderID)
	return events, err
}

func (r *PGRepository) InsertPayment(ctx context.Context, p *model.Payment) error {
	query := `
        INSERT INTO order_payments (id, tenant_id, order_id, amount, method, reference, created_by, created_at)
        VALUES (:id, :tenant_id, :order_id, :amount, :method, :reference, :created_by, :created_at)
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *PGRepository) ListPayments(ctx context.Context, tenantID, orderID string) ([]model.Payment, error) {
	payments := []model.Payment{}
	query := `SELECT * FROM order_payments WHERE tenant_id = $1 AND order_id = $2 ORDER BY created_at, id`
	err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &payments, query, tenantID, orderID)
	return payments, err
}
