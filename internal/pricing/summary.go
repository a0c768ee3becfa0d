package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/shop-service/internal/models"
)

type CartSummary struct {
	Items          []models.CartItem      `json:"items"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	DiscountAmount decimal.Decimal        `json:"discount_amount"`
	Total          decimal.Decimal        `json:"total"`
	AppliedCoupon  *models.Coupon         `json:"applied_coupon"`
	Decision       *models.CouponDecision `json:"coupon_decision,omitempty"`
}

// LinesFromCart converts stored cart rows (with products joined) to pricing lines.
func LinesFromCart(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{ProductID: it.ProductID, Product: it.Product, Quantity: it.Quantity})
	}
	return lines
}

// Summarize prices the cart at live prices. An invalid coupon is simply not
// applied; its decision is still reported for display.
func Summarize(items []models.CartItem, coupon *models.Coupon, couponCode string, now time.Time) CartSummary {
	lines := LinesFromCart(items)
	subtotal := Subtotal(lines)

	s := CartSummary{
		Items:          items,
		Subtotal:       Round2(subtotal),
		DiscountAmount: decimal.Zero,
	}
	if couponCode != "" {
		d := Evaluate(coupon, lines, now)
		s.Decision = &d
		if d.Valid {
			s.DiscountAmount = d.DiscountAmount
			s.AppliedCoupon = coupon
		}
	}
	s.Total = Round2(subtotal.Sub(s.DiscountAmount))
	return s
}
