package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-service/internal/models"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func product(id int64, price string, stock int, category string) *models.Product {
	return &models.Product{ID: id, Name: category + " item", Price: dec(price), Stock: stock, Category: &category}
}

func line(p *models.Product, qty int) Line {
	return Line{ProductID: p.ID, Product: p, Quantity: qty}
}

func coupon(code string, typ models.DiscountType, value, min string) *models.Coupon {
	return &models.Coupon{
		ID:              7,
		Code:            code,
		DiscountType:    typ,
		DiscountValue:   dec(value),
		MinimumPurchase: dec(min),
		IsActive:        true,
	}
}

func TestEvaluate_Welcome10(t *testing.T) {
	c := coupon("WELCOME10", models.DiscountPercentage, "10", "50")
	lines := []Line{line(product(1, "25", 10, "Office"), 4)}

	d := Evaluate(c, lines, now)

	require.True(t, d.Valid)
	assert.Equal(t, MsgApplied, d.Message)
	assertMoney(t, "10.00", d.DiscountAmount)
	require.NotNil(t, d.DiscountType)
	assert.Equal(t, models.DiscountPercentage, *d.DiscountType)
	assertMoney(t, "10.00", *d.DiscountValue)
}

func TestEvaluate_Save20BelowMinimum(t *testing.T) {
	c := coupon("SAVE20", models.DiscountFixed, "20", "100")
	lines := []Line{line(product(1, "40", 10, "Office"), 2)}

	d := Evaluate(c, lines, now)

	assert.False(t, d.Valid)
	assert.Equal(t, "Minimum purchase of $100.00 required", d.Message)
	assert.True(t, d.DiscountAmount.IsZero())
	assert.Nil(t, d.DiscountType)
}

func TestEvaluate_RestrictedCoupon(t *testing.T) {
	laptop := product(1, "200", 5, "Electronics")
	lamp := product(2, "50", 5, "Office")
	c := coupon("ELECTRONICS15", models.DiscountPercentage, "15", "200")
	c.ApplicableProductIDs = []int64{laptop.ID}
	lines := []Line{line(laptop, 1), line(lamp, 1)}

	d := Evaluate(c, lines, now)
	require.True(t, d.Valid)
	assertMoney(t, "30.00", d.DiscountAmount)

	plan, err := Assemble("s1", lines, c, c.Code, now)
	require.NoError(t, err)
	assertMoney(t, "250.00", plan.Order.Subtotal)
	assertMoney(t, "220.00", plan.Order.Total)
}

func TestEvaluate_MinimumUsesWholeCart(t *testing.T) {
	laptop := product(1, "150", 5, "Electronics")
	lamp := product(2, "60", 5, "Office")
	c := coupon("ELECTRONICS15", models.DiscountPercentage, "15", "200")
	c.ApplicableProductIDs = []int64{laptop.ID}

	d := Evaluate(c, []Line{line(laptop, 1), line(lamp, 1)}, now)

	require.True(t, d.Valid)
	assertMoney(t, "22.50", d.DiscountAmount)
}

func TestEvaluate_UsageLimitWins(t *testing.T) {
	c := coupon("LIMITED", models.DiscountFixed, "5", "1000000")
	c.UsageLimit = ptr(100)
	c.TimesUsed = 100
	c.ApplicableProductIDs = []int64{999}

	d := Evaluate(c, nil, now)

	assert.False(t, d.Valid)
	assert.Contains(t, d.Message, "usage limit")
}

func TestEvaluate_RuleOrder(t *testing.T) {
	lines := []Line{line(product(1, "100", 1, "Office"), 1)}
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	cases := []struct {
		name   string
		mutate func(c *models.Coupon)
		want   string
	}{
		{"inactive beats expired", func(c *models.Coupon) { c.IsActive = false; c.ValidUntil = &before }, MsgInactive},
		{"not yet valid", func(c *models.Coupon) { c.ValidFrom = &after }, MsgNotYetValid},
		{"expired", func(c *models.Coupon) { c.ValidUntil = &before }, MsgExpired},
		{"expired beats usage", func(c *models.Coupon) { c.ValidUntil = &before; c.UsageLimit = ptr(1); c.TimesUsed = 1 }, MsgExpired},
		{"usage exhausted", func(c *models.Coupon) { c.UsageLimit = ptr(3); c.TimesUsed = 3 }, MsgUsageLimit},
		{"not applicable", func(c *models.Coupon) { c.ApplicableProductIDs = []int64{42} }, MsgNotApplicable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := coupon("RULES", models.DiscountPercentage, "10", "0")
			tc.mutate(c)
			d := Evaluate(c, lines, now)
			assert.False(t, d.Valid)
			assert.Equal(t, tc.want, d.Message)
		})
	}
}

func TestEvaluate_WindowBoundariesAreInclusive(t *testing.T) {
	lines := []Line{line(product(1, "10", 1, "Office"), 1)}
	c := coupon("EDGE", models.DiscountPercentage, "10", "0")
	c.ValidFrom = &now
	c.ValidUntil = &now

	assert.True(t, Evaluate(c, lines, now).Valid)
}

func TestEvaluate_NilCoupon(t *testing.T) {
	d := Evaluate(nil, nil, now)
	assert.False(t, d.Valid)
	assert.Equal(t, MsgInvalidCode, d.Message)
}

func TestEvaluate_FixedCappedAtApplicableTotal(t *testing.T) {
	c := coupon("BIG", models.DiscountFixed, "50", "0")
	d := Evaluate(c, []Line{line(product(1, "19.99", 1, "Office"), 1)}, now)

	require.True(t, d.Valid)
	assertMoney(t, "19.99", d.DiscountAmount)
}

func TestEvaluate_RoundsHalfUp(t *testing.T) {
	// 10% of 0.45 = 0.045
	c := coupon("HALF", models.DiscountPercentage, "10", "0")
	d := Evaluate(c, []Line{line(product(1, "0.15", 5, "Office"), 3)}, now)

	require.True(t, d.Valid)
	assertMoney(t, "0.05", d.DiscountAmount)
}

func TestEvaluate_SkipsUnresolvedLines(t *testing.T) {
	c := coupon("ALL", models.DiscountPercentage, "50", "0")
	lines := []Line{{ProductID: 5, Quantity: 3}, line(product(1, "10", 5, "Office"), 1)}

	d := Evaluate(c, lines, now)

	require.True(t, d.Valid)
	assertMoney(t, "5.00", d.DiscountAmount)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	c := coupon("WELCOME10", models.DiscountPercentage, "12.5", "0")
	lines := []Line{line(product(1, "33.33", 9, "Office"), 3), line(product(2, "0.07", 9, "Office"), 7)}

	first := Evaluate(c, lines, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(c, lines, now))
	}
}

func TestEvaluateCode_EmptyCodeIsNoop(t *testing.T) {
	d := EvaluateCode("", nil, []Line{line(product(1, "10", 1, "Office"), 1)}, now)
	assert.True(t, d.Valid)
	assert.True(t, d.DiscountAmount.IsZero())
}
