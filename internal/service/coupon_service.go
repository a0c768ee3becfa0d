package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/cache"
	"github.com/Cheertaboi/shop-service/internal/concurrency"
	"github.com/Cheertaboi/shop-service/internal/metrics"
	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/pricing"
	"github.com/Cheertaboi/shop-service/internal/repository"
)

type CouponService struct {
	db       *sql.DB // used for transactions
	coupons  *repository.CouponRepo
	items    *repository.ItemRepo
	products *repository.ProductRepo
	carts    *repository.CartRepo
	cache    cache.CouponCache
	metrics  *metrics.Metrics
	log      *zap.Logger
	workers  int
	now      func() time.Time
}

func NewCouponService(
	db *sql.DB,
	cache cache.CouponCache,
	m *metrics.Metrics,
	log *zap.Logger,
	workers int,
) *CouponService {
	return &CouponService{
		db:       db,
		coupons:  repository.NewCouponRepo(db),
		items:    repository.NewItemRepo(db),
		products: repository.NewProductRepo(db),
		carts:    repository.NewCartRepo(db),
		cache:    cache,
		metrics:  m,
		log:      log,
		workers:  workers,
		now:      time.Now,
	}
}

// ApplicableCoupon is one coupon that would currently apply to a cart.
type ApplicableCoupon struct {
	Code     string                `json:"code"`
	Coupon   *models.Coupon        `json:"coupon"`
	Decision models.CouponDecision `json:"decision"`
}

// Create rejects duplicate codes up front and again via the unique index.
func (s *CouponService) Create(ctx context.Context, in models.CouponInput) (*models.Coupon, error) {
	c := in.Coupon(s.now())
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.coupons.GetByCode(ctx, c.Code); err == nil {
		return nil, models.ErrDuplicateCouponCode
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.coupons.WithTx(tx).Create(ctx, c); err != nil {
			return err
		}
		ids, err := s.items.WithTx(tx).ReplaceApplicableProducts(ctx, c.ID, c.ApplicableProductIDs)
		if err != nil {
			return err
		}
		c.ApplicableProductIDs = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("coupon created", zap.String("code", c.Code), zap.Int64("coupon_id", c.ID))
	return c, nil
}

func (s *CouponService) Get(ctx context.Context, id int64) (*models.Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

func (s *CouponService) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return s.coupons.GetByCode(ctx, code)
}

func (s *CouponService) List(ctx context.Context, activeOnly bool, skip, limit int) ([]models.Coupon, error) {
	return s.coupons.List(ctx, activeOnly, skip, limit)
}

func (s *CouponService) Update(ctx context.Context, id int64, patch models.CouponPatch) (*models.Coupon, error) {
	var c *models.Coupon
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		c, err = s.coupons.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := patch.Apply(c); err != nil {
			return err
		}
		if err := s.coupons.WithTx(tx).Update(ctx, c); err != nil {
			return err
		}
		if patch.ApplicableProductIDs != nil {
			ids, err := s.items.WithTx(tx).ReplaceApplicableProducts(ctx, c.ID, c.ApplicableProductIDs)
			if err != nil {
				return err
			}
			c.ApplicableProductIDs = ids
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, c.Code)
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, id int64) error {
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.coupons.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, c.Code)
	s.log.Info("coupon deleted", zap.String("code", c.Code))
	return nil
}

// Lookup resolves a code through the cache. An unknown code yields nil, nil.
func (s *CouponService) Lookup(ctx context.Context, code string) (*models.Coupon, error) {
	if c, ok := s.cache.Get(ctx, code); ok {
		return c, nil
	}
	c, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup coupon: %w", err)
	}
	s.cache.Set(ctx, code, c)
	return c, nil
}

// Validate prices the given lines at current catalog prices and returns the
// decision. Unknown products are skipped.
func (s *CouponService) Validate(ctx context.Context, req models.ValidationRequest) (models.CouponDecision, error) {
	if err := req.Validate(); err != nil {
		return models.CouponDecision{}, err
	}
	coupon, err := s.Lookup(ctx, req.Code)
	if err != nil {
		return models.CouponDecision{}, err
	}

	ids := make([]int64, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return models.CouponDecision{}, fmt.Errorf("resolve products: %w", err)
	}

	lines := make([]pricing.Line, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		lines = append(lines, pricing.Line{ProductID: it.ProductID, Product: products[it.ProductID], Quantity: it.Quantity})
	}

	d := pricing.Evaluate(coupon, lines, s.now())
	s.metrics.ObserveDecision(d.Valid)
	return d, nil
}

// Applicable evaluates every active coupon against the session's cart and
// returns those that would apply, biggest discount first.
func (s *CouponService) Applicable(ctx context.Context, sessionID string) ([]ApplicableCoupon, error) {
	items, err := s.carts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	coupons, err := s.coupons.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	lines := pricing.LinesFromCart(items)
	now := s.now()
	decisions := make([]models.CouponDecision, len(coupons))
	err = concurrency.ForEach(ctx, s.workers, len(coupons), func(_ context.Context, i int) error {
		decisions[i] = pricing.Evaluate(&coupons[i], lines, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := []ApplicableCoupon{}
	for i := range coupons {
		if decisions[i].Valid {
			out = append(out, ApplicableCoupon{Code: coupons[i].Code, Coupon: &coupons[i], Decision: decisions[i]})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		da, db := out[a].Decision.DiscountAmount, out[b].Decision.DiscountAmount
		if !da.Equal(db) {
			return da.GreaterThan(db)
		}
		return out[a].Code < out[b].Code
	})
	return out, nil
}

func (s *CouponService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return withTx(ctx, s.db, nil, fn)
}
