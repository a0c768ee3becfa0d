package pricing

import (
	"time"

	"github.com/Cheertaboi/shop-service/internal/models"
)

type CouponUsageIncrement struct {
	CouponID int64
	Code     string
}

type ClearCart struct {
	SessionID string
}

type StockDecrement struct {
	ProductID int64
	Quantity  int
}

// OrderPlan is the outcome of a successful assembly: the order to persist and
// the side effects the caller must apply in the same transaction.
type OrderPlan struct {
	Order           models.Order
	Decision        models.CouponDecision
	CouponUsage     *CouponUsageIncrement
	ClearCart       ClearCart
	StockDecrements []StockDecrement
}

// Assemble validates lines and coupon and builds the order plan. It fails on
// missing products, insufficient stock or a rejected coupon.
func Assemble(sessionID string, lines []Line, coupon *models.Coupon, couponCode string, now time.Time) (*OrderPlan, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, l := range lines {
		if l.Product == nil {
			return nil, &ProductNotFoundError{ProductID: l.ProductID}
		}
		if l.Quantity > l.Product.Stock {
			return nil, &InsufficientStockError{
				ProductID: l.Product.ID,
				Name:      l.Product.Name,
				Requested: l.Quantity,
				Available: l.Product.Stock,
			}
		}
	}

	decision := EvaluateCode(couponCode, coupon, lines, now)
	if !decision.Valid {
		return nil, &CouponRejectedError{Code: couponCode, Message: decision.Message}
	}

	subtotal := Subtotal(lines)
	plan := &OrderPlan{
		Decision:  decision,
		ClearCart: ClearCart{SessionID: sessionID},
		Order: models.Order{
			SessionID:      sessionID,
			Subtotal:       Round2(subtotal),
			DiscountAmount: decision.DiscountAmount,
			Total:          Round2(subtotal.Sub(decision.DiscountAmount)),
			CreatedAt:      now.UTC(),
			Items:          make([]models.OrderItem, 0, len(lines)),
		},
	}
	if couponCode != "" {
		code := coupon.Code
		plan.Order.CouponCode = &code
		plan.CouponUsage = &CouponUsageIncrement{CouponID: coupon.ID, Code: coupon.Code}
	}
	for _, l := range lines {
		plan.Order.Items = append(plan.Order.Items, models.OrderItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Product.Price,
		})
		plan.StockDecrements = append(plan.StockDecrements, StockDecrement{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
		})
	}
	return plan, nil
}
