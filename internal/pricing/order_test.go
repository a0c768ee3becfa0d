package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-service/internal/models"
)

func TestAssemble_NoCoupon(t *testing.T) {
	mouse := product(1, "49.99", 50, "Electronics")
	lamp := product(2, "39.99", 40, "Office")

	plan, err := Assemble("sess", []Line{line(mouse, 2), line(lamp, 1)}, nil, "", now)
	require.NoError(t, err)

	assertMoney(t, "139.97", plan.Order.Subtotal)
	assertMoney(t, "0.00", plan.Order.DiscountAmount)
	assertMoney(t, "139.97", plan.Order.Total)
	assert.Nil(t, plan.Order.CouponCode)
	assert.Nil(t, plan.CouponUsage)
	assert.Equal(t, "sess", plan.ClearCart.SessionID)
	assert.Equal(t, []StockDecrement{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, plan.StockDecrements)

	require.Len(t, plan.Order.Items, 2)
	assert.Equal(t, mouse.Name, plan.Order.Items[0].ProductName)
	assertMoney(t, "49.99", plan.Order.Items[0].Price)
}

func TestAssemble_WithCoupon(t *testing.T) {
	c := coupon("WELCOME10", models.DiscountPercentage, "10", "50")

	plan, err := Assemble("sess", []Line{line(product(1, "50", 5, "Office"), 2)}, c, "WELCOME10", now)
	require.NoError(t, err)

	assertMoney(t, "100.00", plan.Order.Subtotal)
	assertMoney(t, "10.00", plan.Order.DiscountAmount)
	assertMoney(t, "90.00", plan.Order.Total)
	require.NotNil(t, plan.Order.CouponCode)
	assert.Equal(t, "WELCOME10", *plan.Order.CouponCode)
	require.NotNil(t, plan.CouponUsage)
	assert.Equal(t, int64(7), plan.CouponUsage.CouponID)
}

func TestAssemble_InsufficientStock(t *testing.T) {
	ok := product(1, "10", 5, "Office")
	short := product(2, "10", 1, "Office")

	plan, err := Assemble("sess", []Line{line(ok, 1), line(short, 2)}, nil, "", now)

	assert.Nil(t, plan)
	require.ErrorIs(t, err, ErrInsufficientStock)
	var se *InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, int64(2), se.ProductID)
	assert.Equal(t, 2, se.Requested)
	assert.Equal(t, 1, se.Available)
}

func TestAssemble_ProductNotFound(t *testing.T) {
	_, err := Assemble("sess", []Line{{ProductID: 99, Quantity: 1}}, nil, "", now)

	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, "Product 99 not found", err.Error())
}

func TestAssemble_StockCheckedBeforeCoupon(t *testing.T) {
	_, err := Assemble("sess", []Line{line(product(1, "10", 0, "Office"), 1)}, nil, "NOPE", now)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAssemble_CouponRejected(t *testing.T) {
	c := coupon("SAVE20", models.DiscountFixed, "20", "100")

	_, err := Assemble("sess", []Line{line(product(1, "80", 5, "Office"), 1)}, c, "SAVE20", now)

	require.ErrorIs(t, err, ErrCouponRejected)
	assert.Equal(t, "Minimum purchase of $100.00 required", err.Error())
}

func TestAssemble_UnknownCouponCode(t *testing.T) {
	_, err := Assemble("sess", []Line{line(product(1, "80", 5, "Office"), 1)}, nil, "GHOST", now)

	require.ErrorIs(t, err, ErrCouponRejected)
	assert.Equal(t, MsgInvalidCode, err.Error())
}

func TestAssemble_Empty(t *testing.T) {
	_, err := Assemble("sess", nil, nil, "", now)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}
