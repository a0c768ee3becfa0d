package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             int64           `json:"id"`
	SessionID      string          `json:"session_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	CouponCode     *string         `json:"coupon_code"`
	CreatedAt      time.Time       `json:"created_at"`
	Items          []OrderItem     `json:"items"`
}

// OrderItem freezes the product price at purchase time.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type PlaceOrderRequest struct {
	SessionID  string            `json:"session_id"`
	CouponCode string            `json:"coupon_code,omitempty"`
	Items      []CartLineRequest `json:"items,omitempty"`
}

func (r PlaceOrderRequest) Validate() error {
	if r.SessionID == "" {
		return invalid("session_id is required")
	}
	for _, it := range r.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}
