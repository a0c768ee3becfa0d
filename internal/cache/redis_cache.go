package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
)

const keyPrefix = "shop:coupon:"

// RedisCouponCache shares cached coupons between replicas. Redis failures are
// logged and treated as misses.
type RedisCouponCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCouponCache(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *RedisCouponCache {
	return &RedisCouponCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCouponCache) Get(ctx context.Context, code string) (*models.Coupon, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+code).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("coupon cache get failed", zap.String("code", code), zap.Error(err))
		}
		return nil, false
	}
	var coupon models.Coupon
	if err := json.Unmarshal(raw, &coupon); err != nil {
		c.log.Warn("coupon cache entry corrupt", zap.String("code", code), zap.Error(err))
		return nil, false
	}
	return &coupon, true
}

func (c *RedisCouponCache) Set(ctx context.Context, code string, coupon *models.Coupon) {
	raw, err := json.Marshal(coupon)
	if err != nil {
		c.log.Warn("coupon cache encode failed", zap.String("code", code), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+code, raw, c.ttl).Err(); err != nil {
		c.log.Warn("coupon cache set failed", zap.String("code", code), zap.Error(err))
	}
}

func (c *RedisCouponCache) Invalidate(ctx context.Context, code string) {
	if err := c.client.Del(ctx, keyPrefix+code).Err(); err != nil {
		c.log.Warn("coupon cache invalidate failed", zap.String("code", code), zap.Error(err))
	}
}
