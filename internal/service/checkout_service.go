package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/cache"
	"github.com/Cheertaboi/shop-service/internal/events"
	"github.com/Cheertaboi/shop-service/internal/metrics"
	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/pricing"
	"github.com/Cheertaboi/shop-service/internal/repository"
)

type CheckoutService struct {
	db        *sql.DB
	products  *repository.ProductRepo
	usage     *repository.UsageRepo
	carts     *repository.CartRepo
	orders    *repository.OrderRepo
	cache     cache.CouponCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(
	db *sql.DB,
	cache cache.CouponCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		db:        db,
		products:  repository.NewProductRepo(db),
		usage:     repository.NewUsageRepo(db),
		carts:     repository.NewCartRepo(db),
		orders:    repository.NewOrderRepo(db),
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// PlaceOrder turns the session cart (or the explicit items) into an order.
// Locking the product rows, deciding, writing the order, consuming the coupon,
// clearing the cart and decrementing stock all happen in one transaction.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var plan *pricing.OrderPlan
	err := withTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		requested, err := s.requestedLines(ctx, s.carts.WithTx(tx), req)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(requested))
		for _, l := range requested {
			ids = append(ids, l.ProductID)
		}
		locked, err := s.products.WithTx(tx).LockForUpdate(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		lines := make([]pricing.Line, 0, len(requested))
		for _, l := range requested {
			lines = append(lines, pricing.Line{ProductID: l.ProductID, Product: locked[l.ProductID], Quantity: l.Quantity})
		}

		var coupon *models.Coupon
		if req.CouponCode != "" {
			coupon, err = s.usage.WithTx(tx).GetAndLock(ctx, req.CouponCode)
			if errors.Is(err, models.ErrNotFound) {
				coupon = nil
			} else if err != nil {
				return fmt.Errorf("lock coupon: %w", err)
			}
		}

		plan, err = pricing.Assemble(req.SessionID, lines, coupon, req.CouponCode, s.now())
		if err != nil {
			return err
		}
		return s.apply(ctx, tx, plan)
	})
	if err != nil {
		s.reject(req, err)
		return nil, err
	}

	order := &plan.Order
	if plan.CouponUsage != nil {
		s.cache.Invalidate(ctx, plan.CouponUsage.Code)
	}
	if err := s.publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(order)); err != nil {
		s.log.Warn("publish order placed failed", zap.Int64("order_id", order.ID), zap.Error(err))
	}
	s.metrics.OrdersPlaced.Inc()
	s.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("session_id", order.SessionID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// requestedLines returns the lines to order, merging repeated products.
func (s *CheckoutService) requestedLines(ctx context.Context, carts *repository.CartRepo, req models.PlaceOrderRequest) ([]models.CartLineRequest, error) {
	raw := req.Items
	if len(raw) == 0 {
		items, err := carts.ListBySession(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		for _, it := range items {
			raw = append(raw, models.CartLineRequest{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}

	merged := make([]models.CartLineRequest, 0, len(raw))
	pos := make(map[int64]int, len(raw))
	for _, l := range raw {
		if i, ok := pos[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		pos[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// apply executes the plan's instructions against the open transaction.
func (s *CheckoutService) apply(ctx context.Context, tx *sql.Tx, plan *pricing.OrderPlan) error {
	if err := s.orders.WithTx(tx).Create(ctx, &plan.Order); err != nil {
		return err
	}
	if u := plan.CouponUsage; u != nil {
		if err := s.usage.WithTx(tx).IncrementUsage(ctx, u.CouponID); err != nil {
			return fmt.Errorf("coupon %s: %w", u.Code, err)
		}
	}
	if _, err := s.carts.WithTx(tx).Clear(ctx, plan.ClearCart.SessionID); err != nil {
		return err
	}
	products := s.products.WithTx(tx)
	for _, d := range plan.StockDecrements {
		if err := products.DecrementStock(ctx, d.ProductID, d.Quantity); err != nil {
			return fmt.Errorf("product %d: %w", d.ProductID, err)
		}
	}
	return nil
}

func (s *CheckoutService) reject(req models.PlaceOrderRequest, err error) {
	reason := "error"
	switch {
	case errors.Is(err, pricing.ErrCouponRejected):
		reason = "coupon"
	case errors.Is(err, pricing.ErrInsufficientStock):
		reason = "stock"
	case errors.Is(err, pricing.ErrProductNotFound):
		reason = "product"
	case errors.Is(err, pricing.ErrEmptyOrder):
		reason = "empty"
	}
	s.metrics.OrderRejections.WithLabelValues(reason).Inc()
	if reason == "error" {
		s.log.Error("place order failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return
	}
	s.log.Info("order rejected", zap.String("session_id", req.SessionID), zap.String("reason", reason), zap.Error(err))
}

func (s *CheckoutService) Get(ctx context.Context, id int64) (*models.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *CheckoutService) ListBySession(ctx context.Context, sessionID string, skip, limit int) ([]models.Order, error) {
	return s.orders.ListBySession(ctx, sessionID, skip, limit)
}
