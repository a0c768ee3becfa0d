// Package pricing decides whether a coupon applies to a cart, computes the
// discount and assembles orders. It performs no I/O: callers resolve products
// and coupons first and execute the returned instructions themselves.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/shop-service/internal/models"
)

const (
	MsgInvalidCode   = "Invalid coupon code"
	MsgInactive      = "This coupon is no longer active"
	MsgNotYetValid   = "This coupon is not yet valid"
	MsgExpired       = "This coupon has expired"
	MsgUsageLimit    = "This coupon has reached its usage limit"
	MsgNotApplicable = "This coupon doesn't apply to any items in your cart"
	MsgApplied       = "Coupon applied successfully"
)

var hundred = decimal.NewFromInt(100)

// Line is a cart line with its product already resolved. A nil Product means
// the lookup found nothing.
type Line struct {
	ProductID int64
	Product   *models.Product
	Quantity  int
}

func (l Line) amount() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Round2 rounds half away from zero to cents, which is half-up for amounts >= 0.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func reject(msg string) models.CouponDecision {
	return models.CouponDecision{Message: msg, DiscountAmount: decimal.Zero}
}

// Evaluate applies the coupon rules in order; the first failing rule decides.
func Evaluate(coupon *models.Coupon, lines []Line, now time.Time) models.CouponDecision {
	if coupon == nil {
		return reject(MsgInvalidCode)
	}
	if !coupon.IsActive {
		return reject(MsgInactive)
	}
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return reject(MsgNotYetValid)
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return reject(MsgExpired)
	}
	if coupon.UsageExhausted() {
		return reject(MsgUsageLimit)
	}

	cartTotal, applicableTotal := decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.Product == nil {
			continue
		}
		amt := l.amount()
		cartTotal = cartTotal.Add(amt)
		if coupon.AppliesTo(l.Product.ID) {
			applicableTotal = applicableTotal.Add(amt)
		}
	}

	// minimum purchase is checked against the whole cart, even for restricted coupons
	if cartTotal.LessThan(coupon.MinimumPurchase) {
		return reject(fmt.Sprintf("Minimum purchase of $%s required", coupon.MinimumPurchase.StringFixed(2)))
	}
	if applicableTotal.IsZero() {
		return reject(MsgNotApplicable)
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discount = applicableTotal.Mul(coupon.DiscountValue).Div(hundred)
	default:
		discount = decimal.Min(coupon.DiscountValue, applicableTotal)
	}

	dt, dv := coupon.DiscountType, coupon.DiscountValue
	return models.CouponDecision{
		Valid:          true,
		Message:        MsgApplied,
		DiscountAmount: Round2(discount),
		DiscountType:   &dt,
		DiscountValue:  &dv,
	}
}

// EvaluateCode treats an empty code as "no coupon": valid, nothing off.
func EvaluateCode(code string, coupon *models.Coupon, lines []Line, now time.Time) models.CouponDecision {
	if code == "" {
		return models.CouponDecision{Valid: true, DiscountAmount: decimal.Zero}
	}
	return Evaluate(coupon, lines, now)
}

// Subtotal sums price*quantity over the resolved lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Product == nil {
			continue
		}
		total = total.Add(l.amount())
	}
	return total
}
