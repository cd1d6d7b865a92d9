package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/apperror"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/order/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) pay(t *testing.T, orderID, amount string) (*model.Order, error) {
	t.Helper()
	return f.uc.AddPayment(context.Background(), &dto.AddPaymentInput{
		TenantID: tenantID,
		OrderID:  orderID,
		Amount:   dec(amount),
		Method:   "cash",
		ActorID:  actorID,
	})
}

func (f *fixture) setStatus(orderID string, status model.OrderStatus) (*model.Order, error) {
	return f.uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		TenantID: tenantID,
		OrderID:  orderID,
		Status:   status,
		ActorID:  actorID,
	})
}

func (f *fixture) cancel(orderID, reason string) (*model.Order, error) {
	return f.uc.Cancel(context.Background(), &dto.CancelInput{
		TenantID: tenantID,
		OrderID:  orderID,
		Reason:   reason,
		ActorID:  actorID,
	})
}

func TestAddPaymentTracksBalance(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 1, "100.00"))

	o, err := f.pay(t, o.ID, "60")
	require.NoError(t, err)
	assert.Equal(t, "60.00", o.PaidAmount.StringFixed(2))
	assert.Equal(t, "40.00", o.DueAmount.StringFixed(2))
	assert.Equal(t, model.PaymentPartial, o.PaymentStatus)

	o, err = f.pay(t, o.ID, "50")
	require.NoError(t, err)
	assert.Equal(t, "110.00", o.PaidAmount.StringFixed(2))
	assert.True(t, o.DueAmount.IsZero())
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)

	payments, err := f.uc.ListPayments(context.Background(), tenantID, o.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "cash", payments[0].Method)

	stored, err := f.uc.GetOrder(context.Background(), tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, model.OrderPending, stored.Status)
}

func TestAddPaymentValidation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 1, "10"))

	_, err := f.pay(t, o.ID, "0")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.pay(t, o.ID, "-5")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.uc.AddPayment(context.Background(), &dto.AddPaymentInput{TenantID: tenantID, OrderID: o.ID, Amount: dec("1")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.pay(t, "missing", "1")
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}

func TestAddPaymentRejectsSubCentAmount(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 1, "10"))

	_, err := f.pay(t, o.ID, "0.004")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.pay(t, o.ID, "2.505")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	got, err := f.uc.GetOrder(context.Background(), tenantID, o.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.IsZero())
	assert.Equal(t, model.PaymentUnpaid, got.PaymentStatus)
}

func TestAddPaymentRejectsCancelledOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 1, "10"))
	_, err := f.cancel(o.ID, "changed mind")
	require.NoError(t, err)

	_, err = f.pay(t, o.ID, "10")
	assert.ErrorIs(t, err, apperror.ErrOrderCancelled)
}

func TestReadyThenDelivered(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 1, "10"))

	ready, err := f.setStatus(o.ID, model.OrderReady)
	require.NoError(t, err)
	assert.True(t, ready.IsDeliveryReady)
	require.NotNil(t, ready.ReadyAt)
	assert.Nil(t, ready.DeliveredAt)

	delivered, err := f.setStatus(o.ID, model.OrderDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
	assert.True(t, delivered.IsDeliveryReady)

	events, err := f.uc.ListStatusEvents(context.Background(), tenantID, o.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.OrderPending, events[0].Status)
	assert.Equal(t, model.OrderReady, events[1].Status)
	assert.Equal(t, model.OrderDelivered, events[2].Status)
	assert.Less(t, events[1].Seq, events[2].Seq)

	assert.Equal(t, []string{
		order.EventOrderCreated,
		order.EventOrderStatusChanged,
		order.EventOrderStatusChanged,
	}, f.publisher.Events())
}

func TestUpdateStatusRejectsBackwardsInStrictMode(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 1, "10"))

	_, err := f.setStatus(o.ID, model.OrderProcessing)
	require.NoError(t, err)
	_, err = f.setStatus(o.ID, model.OrderConfirmed)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	events, err := f.uc.ListStatusEvents(context.Background(), tenantID, o.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestUpdateStatusPermissive(t *testing.T) {
	f := newFixture(t, func(o *fixtureOption) { o.cfg.StrictTransitions = false })
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 1, "10"))

	_, err := f.setStatus(o.ID, model.OrderDelivered)
	require.NoError(t, err)
	back, err := f.setStatus(o.ID, model.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, back.Status)
	assert.NotNil(t, back.DeliveredAt)
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.setStatus("missing", "SHIPPED")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.setStatus("missing", model.OrderReady)
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}

func TestCancelRestocks(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	f.seed(t, productB, locationID, 10)
	o := f.checkout(t, line(productA, 4, "1"), line(productB, 2, "1"))

	cancelled, err := f.cancel(o.ID, "customer left")
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "customer left", *cancelled.CancelReason)

	assert.Equal(t, int64(10), f.onHand(t, productA, locationID))
	assert.Equal(t, int64(10), f.onHand(t, productB, locationID))
	ins := f.movements(t, "order_cancel")
	assert.Len(t, ins, 2)
	for _, m := range ins {
		assert.Equal(t, model.MovementIn, m.MovementType)
	}
}

func TestCancelWithoutRestock(t *testing.T) {
	f := newFixture(t, func(o *fixtureOption) { o.cfg.RestockOnCancel = false })
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 4, "1"))

	_, err := f.cancel(o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.onHand(t, productA, locationID))
	assert.Empty(t, f.movements(t, "order_cancel"))
}

func TestCancelTwiceFails(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 4, "1"))

	first, err := f.cancel(o.ID, "first")
	require.NoError(t, err)

	_, err = f.cancel(o.ID, "second")
	require.ErrorIs(t, err, apperror.ErrAlreadyCancelled)

	stored, err := f.uc.GetOrder(context.Background(), tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.CancelReason, *stored.CancelReason)
	assert.Equal(t, first.CancelledAt, stored.CancelledAt)
	assert.Equal(t, int64(10), f.onHand(t, productA, locationID), "no second restock")

	events, err := f.uc.ListStatusEvents(context.Background(), tenantID, o.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestUpdateStatusCancelledDelegatesToCancel(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 4, "1"))

	cancelled, err := f.setStatus(o.ID, model.OrderCancelled)
	require.NoError(t, err)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, int64(10), f.onHand(t, productA, locationID))
	assert.Contains(t, f.publisher.Events(), order.EventOrderCancelled)
}

func TestCancelDeliveredOrderInStrictMode(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, locationID, 10)
	o := f.checkout(t, line(productA, 4, "1"))
	_, err := f.setStatus(o.ID, model.OrderDelivered)
	require.NoError(t, err)

	_, err = f.cancel(o.ID, "too late")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Equal(t, int64(6), f.onHand(t, productA, locationID))
}
