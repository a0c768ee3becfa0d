package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/repository"
)

type seedProduct struct {
	name        string
	description string
	price       string
	category    string
	stock       int
}

var sampleProducts = []seedProduct{
	{"Laptop Pro 15", "High-performance laptop with 16GB RAM and 512GB SSD", "1299.99", "Electronics", 10},
	{"Wireless Mouse", "Ergonomic wireless mouse with precision tracking", "49.99", "Electronics", 50},
	{"USB-C Hub", "7-in-1 USB-C hub with HDMI, USB 3.0, and SD card reader", "79.99", "Electronics", 30},
	{"Mechanical Keyboard", "RGB mechanical keyboard with blue switches", "149.99", "Electronics", 20},
	{"4K Webcam", "Professional 4K webcam with auto-focus and noise cancellation", "199.99", "Electronics", 15},
	{"Desk Lamp", "LED desk lamp with adjustable brightness and color temperature", "39.99", "Office", 40},
	{"Standing Desk", "Electric height-adjustable standing desk", "599.99", "Office", 5},
	{"Office Chair", "Ergonomic office chair with lumbar support", "349.99", "Office", 8},
}

// Seed fills an empty catalog with sample products and coupons. It is a
// no-op when any product exists.
func Seed(ctx context.Context, products *repository.ProductRepo, catalog *CatalogService, coupons *CouponService, log *zap.Logger) error {
	n, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		log.Info("catalog already seeded", zap.Int("products", n))
		return nil
	}

	var electronics, office []int64
	for _, sp := range sampleProducts {
		category := sp.category
		p, err := catalog.Create(ctx, models.ProductInput{
			Name:        sp.name,
			Description: sp.description,
			Price:       decimal.RequireFromString(sp.price),
			Stock:       sp.stock,
			Category:    &category,
		})
		if err != nil {
			return err
		}
		switch category {
		case "Electronics":
			electronics = append(electronics, p.ID)
		case "Office":
			office = append(office, p.ID)
		}
	}

	now := coupons.now()
	days := func(n int) *time.Time {
		t := now.AddDate(0, 0, n)
		return &t
	}
	limit := 100
	samples := []models.CouponInput{
		{
			Code:            "WELCOME10",
			Description:     "10% off for new customers",
			DiscountType:    models.DiscountPercentage,
			DiscountValue:   decimal.NewFromInt(10),
			MinimumPurchase: decimal.NewFromInt(50),
			ValidUntil:      days(30),
		},
		{
			Code:            "SAVE20",
			Description:     "$20 off on orders over $100",
			DiscountType:    models.DiscountFixed,
			DiscountValue:   decimal.NewFromInt(20),
			MinimumPurchase: decimal.NewFromInt(100),
			ValidUntil:      days(60),
		},
		{
			Code:                 "ELECTRONICS15",
			Description:          "15% off on electronics",
			DiscountType:         models.DiscountPercentage,
			DiscountValue:        decimal.NewFromInt(15),
			MinimumPurchase:      decimal.NewFromInt(200),
			ValidUntil:           days(45),
			ApplicableProductIDs: electronics,
		},
		{
			Code:          "BLACKFRIDAY",
			Description:   "Black Friday special - 25% off everything",
			DiscountType:  models.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(25),
			UsageLimit:    &limit,
			ValidUntil:    days(7),
		},
		{
			Code:                 "OFFICE50",
			Description:          "$50 off office furniture",
			DiscountType:         models.DiscountFixed,
			DiscountValue:        decimal.NewFromInt(50),
			MinimumPurchase:      decimal.NewFromInt(300),
			ValidUntil:           days(90),
			ApplicableProductIDs: office,
		},
		{
			Code:          "EXPIRED",
			Description:   "This coupon has expired",
			DiscountType:  models.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(30),
			ValidFrom:     days(-60),
			ValidUntil:    days(-1),
		},
	}
	for _, in := range samples {
		if _, err := coupons.Create(ctx, in); err != nil {
			return err
		}
	}
	log.Info("catalog seeded", zap.Int("products", len(sampleProducts)), zap.Int("coupons", len(samples)))
	return nil
}
