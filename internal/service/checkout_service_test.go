package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/cache"
	"github.com/Cheertaboi/shop-service/internal/events"
	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/pricing"
)

type recordingPublisher struct {
	events []events.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, ev events.OrderPlaced) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newCheckout(t *testing.T) (*CheckoutService, sqlmock.Sqlmock, *recordingPublisher, *cache.LocalCouponCache) {
	t.Helper()
	db, mock := newMock(t)
	pub := &recordingPublisher{}
	c := cache.NewLocalCouponCache(time.Minute)
	svc := NewCheckoutService(db, c, pub, newMetrics(), zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, pub, c
}

const (
	qCart        = `FROM cart_items ci`
	qLockProduct = `FROM products WHERE id = ANY\(\$1\) ORDER BY id FOR UPDATE`
	qLockCoupon  = `FROM coupons c WHERE c.code = \$1 FOR UPDATE`
)

func TestPlaceOrder_WithCoupon(t *testing.T) {
	svc, mock, pub, c := newCheckout(t)
	ctx := context.Background()
	c.Set(ctx, "WELCOME10", &models.Coupon{Code: "WELCOME10"})

	mock.ExpectBegin()
	mock.ExpectQuery(qCart).WithArgs("sess").
		WillReturnRows(addCartLine(cartRows(), 1, "sess", 1, 2, "Widget", "50.00", 5, "Office"))
	mock.ExpectQuery(qLockProduct).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(addProduct(productRows(), 1, "Widget", "50.00", 5, "Office"))
	mock.ExpectQuery(qLockCoupon).WithArgs("WELCOME10").
		WillReturnRows(addCoupon(couponRows(), 7, "WELCOME10", "percentage", "10", "50", "{}"))
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs("sess", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(41), int64(1), "Widget", int64(2), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(501)))
	mock.ExpectExec(`UPDATE coupons\s+SET times_used`).WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM cart_items WHERE session_id`).WithArgs("sess").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET stock`).WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := svc.PlaceOrder(ctx, models.PlaceOrderRequest{SessionID: "sess", CouponCode: "WELCOME10"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(41), order.ID)
	assert.Equal(t, "100.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", order.DiscountAmount.StringFixed(2))
	assert.Equal(t, "90.00", order.Total.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(501), order.Items[0].ID)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(50)))

	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(41), pub.events[0].OrderID)
	_, cached := c.Get(ctx, "WELCOME10")
	assert.False(t, cached)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.OrdersPlaced))
}

func TestPlaceOrder_InsufficientStockWritesNothing(t *testing.T) {
	svc, mock, pub, _ := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qCart).WithArgs("sess").
		WillReturnRows(addCartLine(
			addCartLine(cartRows(), 1, "sess", 1, 1, "Lamp", "39.99", 40, "Office"),
			2, "sess", 2, 3, "Desk", "599.99", 2, "Office"))
	mock.ExpectQuery(qLockProduct).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(addProduct(addProduct(productRows(), 1, "Lamp", "39.99", 40, "Office"), 2, "Desk", "599.99", 2, "Office"))
	mock.ExpectRollback()

	order, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{SessionID: "sess"})

	assert.Nil(t, order)
	require.ErrorIs(t, err, pricing.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for Desk", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.events)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.OrderRejections.WithLabelValues("stock")))
}

func TestPlaceOrder_UnknownCouponRejected(t *testing.T) {
	svc, mock, _, _ := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qCart).WithArgs("sess").
		WillReturnRows(addCartLine(cartRows(), 1, "sess", 1, 1, "Lamp", "39.99", 40, "Office"))
	mock.ExpectQuery(qLockProduct).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(addProduct(productRows(), 1, "Lamp", "39.99", 40, "Office"))
	mock.ExpectQuery(qLockCoupon).WithArgs("GHOST").WillReturnRows(couponRows())
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{SessionID: "sess", CouponCode: "GHOST"})

	var rejected *pricing.CouponRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, pricing.MsgInvalidCode, rejected.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_StockRaceRollsBack(t *testing.T) {
	svc, mock, pub, _ := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qCart).WithArgs("sess").
		WillReturnRows(addCartLine(cartRows(), 1, "sess", 1, 1, "Lamp", "39.99", 40, "Office"))
	mock.ExpectQuery(qLockProduct).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(addProduct(productRows(), 1, "Lamp", "39.99", 40, "Office"))
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(90)))
	mock.ExpectExec(`DELETE FROM cart_items WHERE session_id`).WithArgs("sess").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET stock`).WithArgs(int64(1), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{SessionID: "sess"})

	require.ErrorIs(t, err, models.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.events)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc, mock, _, _ := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qCart).WithArgs("sess").WillReturnRows(cartRows())
	mock.ExpectQuery(qLockProduct).WithArgs(sqlmock.AnyArg()).WillReturnRows(productRows())
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{SessionID: "sess"})

	require.ErrorIs(t, err, pricing.ErrEmptyOrder)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_PublishFailureKeepsOrder(t *testing.T) {
	svc, mock, pub, _ := newCheckout(t)
	pub.err = errors.New("broker down")

	mock.ExpectBegin()
	mock.ExpectQuery(qLockProduct).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(addProduct(productRows(), 3, "Hub", "79.99", 30, "Electronics"))
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(5), int64(3), "Hub", int64(3), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(50)))
	mock.ExpectExec(`DELETE FROM cart_items WHERE session_id`).WithArgs("sess").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE products SET stock`).WithArgs(int64(3), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{
		SessionID: "sess",
		Items:     []models.CartLineRequest{{ProductID: 3, Quantity: 1}, {ProductID: 3, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, "239.97", order.Total.StringFixed(2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrder_InvalidRequest(t *testing.T) {
	svc, mock, _, _ := newCheckout(t)

	_, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{})

	assert.ErrorIs(t, err, models.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}
