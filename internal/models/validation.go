package models

import "github.com/shopspring/decimal"

type ValidationRequest struct {
	Code      string            `json:"code"`
	CartItems []CartLineRequest `json:"cart_items"`
}

func (r ValidationRequest) Validate() error {
	if r.Code == "" {
		return invalid("code is required")
	}
	for _, it := range r.CartItems {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CouponDecision is the verdict of one coupon against one cart. It is data, not an error.
type CouponDecision struct {
	Valid          bool             `json:"valid"`
	Message        string           `json:"message"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	DiscountType   *DiscountType    `json:"discount_type"`
	DiscountValue  *decimal.Decimal `json:"discount_value"`
}
