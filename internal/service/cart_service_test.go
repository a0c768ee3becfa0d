package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/pricing"
	"github.com/Cheertaboi/shop-service/internal/repository"
)

type stubLookup map[string]*models.Coupon

func (s stubLookup) Lookup(_ context.Context, code string) (*models.Coupon, error) {
	return s[code], nil
}

func newCartService(t *testing.T, coupons stubLookup) (*CartService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	svc := NewCartService(repository.NewCartRepo(db), repository.NewProductRepo(db), coupons)
	svc.now = func() time.Time { return fixedNow }
	return svc, mock
}

func TestCartAdd_MergedQuantityMustFitStock(t *testing.T) {
	svc, mock := newCartService(t, nil)
	mock.ExpectQuery(`FROM products WHERE id = \$1`).WithArgs(int64(1)).
		WillReturnRows(addProduct(productRows(), 1, "Desk", "599.99", 5, "Office"))
	mock.ExpectQuery(`SELECT quantity FROM cart_items`).WithArgs("sess", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(int64(4)))

	_, err := svc.Add(context.Background(), models.AddToCartRequest{
		SessionID:       "sess",
		CartLineRequest: models.CartLineRequest{ProductID: 1, Quantity: 2},
	})

	require.ErrorIs(t, err, pricing.ErrInsufficientStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartAdd_UnknownProduct(t *testing.T) {
	svc, mock := newCartService(t, nil)
	mock.ExpectQuery(`FROM products WHERE id = \$1`).WithArgs(int64(9)).WillReturnRows(productRows())

	_, err := svc.Add(context.Background(), models.AddToCartRequest{
		SessionID:       "sess",
		CartLineRequest: models.CartLineRequest{ProductID: 9, Quantity: 1},
	})

	assert.ErrorIs(t, err, pricing.ErrProductNotFound)
}

func TestCartAdd_Merges(t *testing.T) {
	svc, mock := newCartService(t, nil)
	mock.ExpectQuery(`FROM products WHERE id = \$1`).WithArgs(int64(1)).
		WillReturnRows(addProduct(productRows(), 1, "Lamp", "39.99", 40, "Office"))
	mock.ExpectQuery(`SELECT quantity FROM cart_items`).WithArgs("sess", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(int64(1)))
	mock.ExpectQuery(`ON CONFLICT \(session_id, product_id\)`).WithArgs("sess", int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectQuery(`WHERE ci.id = \$1`).WithArgs(int64(8)).
		WillReturnRows(addCartLine(cartRows(), 8, "sess", 1, 3, "Lamp", "39.99", 40, "Office"))

	it, err := svc.Add(context.Background(), models.AddToCartRequest{
		SessionID:       "sess",
		CartLineRequest: models.CartLineRequest{ProductID: 1, Quantity: 2},
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 3, it.Quantity)
	assert.Equal(t, "Lamp", it.Product.Name)
}

func TestCartUpdateQuantity_RejectsZero(t *testing.T) {
	svc, mock := newCartService(t, nil)

	_, err := svc.UpdateQuantity(context.Background(), 1, 0)

	assert.ErrorIs(t, err, models.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartSummary_InvalidCouponNotApplied(t *testing.T) {
	coupons := stubLookup{"SAVE20": {
		Code:            "SAVE20",
		DiscountType:    models.DiscountFixed,
		DiscountValue:   decimal.NewFromInt(20),
		MinimumPurchase: decimal.NewFromInt(100),
		IsActive:        true,
	}}
	svc, mock := newCartService(t, coupons)
	mock.ExpectQuery(`FROM cart_items ci`).WithArgs("sess").
		WillReturnRows(addCartLine(cartRows(), 1, "sess", 1, 2, "Lamp", "40.00", 40, "Office"))

	s, err := svc.Summary(context.Background(), "sess", "SAVE20")

	require.NoError(t, err)
	assert.Equal(t, "80.00", s.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", s.DiscountAmount.StringFixed(2))
	assert.Equal(t, "80.00", s.Total.StringFixed(2))
	assert.Nil(t, s.AppliedCoupon)
}
