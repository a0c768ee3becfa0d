// Package events publishes order lifecycle events after commit.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/shop-service/internal/models"
)

const TypeOrderPlaced = "order.placed"

type OrderPlacedItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlaced struct {
	Type           string            `json:"type"`
	OrderID        int64             `json:"order_id"`
	SessionID      string            `json:"session_id"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	Total          decimal.Decimal   `json:"total"`
	CouponCode     *string           `json:"coupon_code,omitempty"`
	Items          []OrderPlacedItem `json:"items"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

func NewOrderPlaced(o *models.Order) OrderPlaced {
	ev := OrderPlaced{
		Type:           TypeOrderPlaced,
		OrderID:        o.ID,
		SessionID:      o.SessionID,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		Total:          o.Total,
		CouponCode:     o.CouponCode,
		OccurredAt:     o.CreatedAt,
		Items:          make([]OrderPlacedItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderPlacedItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return ev
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

func (NopPublisher) Close() error { return nil }
