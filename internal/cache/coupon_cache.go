// Package cache holds read-through caches for coupon lookups by code.
// Order placement never reads through the cache; it locks the row instead.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Cheertaboi/shop-service/internal/models"
)

type CouponCache interface {
	Get(ctx context.Context, code string) (*models.Coupon, bool)
	Set(ctx context.Context, code string, c *models.Coupon)
	Invalidate(ctx context.Context, code string)
}

type entry struct {
	coupon  models.Coupon
	expires time.Time
}

// LocalCouponCache is the in-process cache used when no Redis is configured.
type LocalCouponCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	store map[string]entry
}

func NewLocalCouponCache(ttl time.Duration) *LocalCouponCache {
	return &LocalCouponCache{
		ttl:   ttl,
		now:   time.Now,
		store: make(map[string]entry),
	}
}

func (c *LocalCouponCache) Get(_ context.Context, code string) (*models.Coupon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[code]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	cp := e.coupon
	return &cp, true
}

// Set stores a copy so callers cannot mutate cached state.
func (c *LocalCouponCache) Set(_ context.Context, code string, coupon *models.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[code] = entry{coupon: *coupon, expires: c.now().Add(c.ttl)}
}

func (c *LocalCouponCache) Invalidate(_ context.Context, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, code)
}
