package service

import (
	"context"
	"errors"
	"time"

	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/pricing"
	"github.com/Cheertaboi/shop-service/internal/repository"
)

// CouponLookup resolves a coupon code; unknown codes yield nil, nil.
type CouponLookup interface {
	Lookup(ctx context.Context, code string) (*models.Coupon, error)
}

type CartService struct {
	carts    *repository.CartRepo
	products *repository.ProductRepo
	coupons  CouponLookup
	now      func() time.Time
}

func NewCartService(carts *repository.CartRepo, products *repository.ProductRepo, coupons CouponLookup) *CartService {
	return &CartService{carts: carts, products: products, coupons: coupons, now: time.Now}
}

func (s *CartService) List(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return s.carts.ListBySession(ctx, sessionID)
}

// Add puts the product in the cart, merging with an existing line. The merged
// quantity must fit in the current stock.
func (s *CartService) Add(ctx context.Context, req models.AddToCartRequest) (*models.CartItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, req.ProductID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &pricing.ProductNotFoundError{ProductID: req.ProductID}
	}
	if err != nil {
		return nil, err
	}
	have, err := s.carts.QuantityOf(ctx, req.SessionID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if want := have + req.Quantity; want > p.Stock {
		return nil, &pricing.InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: want, Available: p.Stock}
	}

	id, err := s.carts.Add(ctx, req.SessionID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return s.carts.Get(ctx, id)
}

func (s *CartService) UpdateQuantity(ctx context.Context, itemID int64, qty int) (*models.CartItem, error) {
	if err := models.ValidateQuantity(qty); err != nil {
		return nil, err
	}
	it, err := s.carts.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if qty > it.Product.Stock {
		return nil, &pricing.InsufficientStockError{ProductID: it.ProductID, Name: it.Product.Name, Requested: qty, Available: it.Product.Stock}
	}
	if err := s.carts.UpdateQuantity(ctx, itemID, qty); err != nil {
		return nil, err
	}
	it.Quantity = qty
	return it, nil
}

func (s *CartService) Remove(ctx context.Context, itemID int64) error {
	return s.carts.Remove(ctx, itemID)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	_, err := s.carts.Clear(ctx, sessionID)
	return err
}

// Summary prices the cart at live prices. A coupon that does not apply is
// left out silently.
func (s *CartService) Summary(ctx context.Context, sessionID, couponCode string) (pricing.CartSummary, error) {
	items, err := s.carts.ListBySession(ctx, sessionID)
	if err != nil {
		return pricing.CartSummary{}, err
	}
	var coupon *models.Coupon
	if couponCode != "" {
		if coupon, err = s.coupons.Lookup(ctx, couponCode); err != nil {
			return pricing.CartSummary{}, err
		}
	}
	return pricing.Summarize(items, coupon, couponCode, s.now()), nil
}
