package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID                   int64           `json:"id"`
	Code                 string          `json:"code"`
	Description          string          `json:"description"`
	DiscountType         DiscountType    `json:"discount_type"`
	DiscountValue        decimal.Decimal `json:"discount_value"`
	MinimumPurchase      decimal.Decimal `json:"minimum_purchase"`
	UsageLimit           *int            `json:"usage_limit"`
	TimesUsed            int             `json:"times_used"`
	IsActive             bool            `json:"is_active"`
	ValidFrom            *time.Time      `json:"valid_from"`
	ValidUntil           *time.Time      `json:"valid_until"`
	ApplicableProductIDs []int64         `json:"applicable_product_ids"`
	CreatedAt            time.Time       `json:"created_at"`
}

// AppliesTo reports whether productID qualifies; an empty set qualifies every product.
func (c *Coupon) AppliesTo(productID int64) bool {
	if len(c.ApplicableProductIDs) == 0 {
		return true
	}
	for _, id := range c.ApplicableProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

func (c *Coupon) UsageExhausted() bool {
	return c.UsageLimit != nil && c.TimesUsed >= *c.UsageLimit
}

func (c *Coupon) Validate() error {
	if n := len(c.Code); n < 3 || n > 50 {
		return invalid("code must be between 3 and 50 characters")
	}
	if !c.DiscountType.Valid() {
		return invalid("discount_type must be 'percentage' or 'fixed'")
	}
	if !c.DiscountValue.IsPositive() {
		return invalid("discount_value must be greater than 0")
	}
	if c.DiscountType == DiscountPercentage && c.DiscountValue.GreaterThan(hundred) {
		return invalid("Percentage discount cannot exceed 100%")
	}
	if c.MinimumPurchase.IsNegative() {
		return invalid("minimum_purchase must be greater than or equal to 0")
	}
	if c.UsageLimit != nil && *c.UsageLimit < 1 {
		return invalid("usage_limit must be at least 1")
	}
	if c.UsageLimit != nil && c.TimesUsed > *c.UsageLimit {
		return invalid("usage_limit cannot be lower than times_used")
	}
	if c.ValidFrom != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom) {
		return invalid("valid_until must not be before valid_from")
	}
	return nil
}

type CouponInput struct {
	Code                 string          `json:"code"`
	Description          string          `json:"description"`
	DiscountType         DiscountType    `json:"discount_type"`
	DiscountValue        decimal.Decimal `json:"discount_value"`
	MinimumPurchase      decimal.Decimal `json:"minimum_purchase"`
	UsageLimit           *int            `json:"usage_limit,omitempty"`
	IsActive             *bool           `json:"is_active,omitempty"`
	ValidFrom            *time.Time      `json:"valid_from,omitempty"`
	ValidUntil           *time.Time      `json:"valid_until,omitempty"`
	ApplicableProductIDs []int64         `json:"applicable_product_ids,omitempty"`
}

// Coupon builds the record to insert. valid_from defaults to now.
func (in CouponInput) Coupon(now time.Time) *Coupon {
	c := &Coupon{
		Code:                 in.Code,
		Description:          in.Description,
		DiscountType:         in.DiscountType,
		DiscountValue:        in.DiscountValue,
		MinimumPurchase:      in.MinimumPurchase,
		UsageLimit:           in.UsageLimit,
		IsActive:             true,
		ValidFrom:            in.ValidFrom,
		ValidUntil:           in.ValidUntil,
		ApplicableProductIDs: in.ApplicableProductIDs,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if c.ValidFrom == nil {
		from := now.UTC()
		c.ValidFrom = &from
	}
	return c
}

type CouponPatch struct {
	Description          *string          `json:"description,omitempty"`
	DiscountType         *DiscountType    `json:"discount_type,omitempty"`
	DiscountValue        *decimal.Decimal `json:"discount_value,omitempty"`
	MinimumPurchase      *decimal.Decimal `json:"minimum_purchase,omitempty"`
	UsageLimit           *int             `json:"usage_limit,omitempty"`
	IsActive             *bool            `json:"is_active,omitempty"`
	ValidUntil           *time.Time       `json:"valid_until,omitempty"`
	ApplicableProductIDs *[]int64         `json:"applicable_product_ids,omitempty"`
}

// Apply merges the patch into c and validates the merged coupon.
func (cp CouponPatch) Apply(c *Coupon) error {
	if cp.Description != nil {
		c.Description = *cp.Description
	}
	if cp.DiscountType != nil {
		c.DiscountType = *cp.DiscountType
	}
	if cp.DiscountValue != nil {
		c.DiscountValue = *cp.DiscountValue
	}
	if cp.MinimumPurchase != nil {
		c.MinimumPurchase = *cp.MinimumPurchase
	}
	if cp.UsageLimit != nil {
		c.UsageLimit = cp.UsageLimit
	}
	if cp.IsActive != nil {
		c.IsActive = *cp.IsActive
	}
	if cp.ValidUntil != nil {
		c.ValidUntil = cp.ValidUntil
	}
	if cp.ApplicableProductIDs != nil {
		c.ApplicableProductIDs = *cp.ApplicableProductIDs
	}
	return c.Validate()
}
