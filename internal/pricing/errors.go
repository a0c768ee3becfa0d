package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCouponRejected    = errors.New("coupon rejected")
	ErrEmptyOrder        = errors.New("order has no items")
)

type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool { return target == ErrProductNotFound }

type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.Name)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// CouponRejectedError carries the decision message shown to the customer.
type CouponRejectedError struct {
	Code    string
	Message string
}

func (e *CouponRejectedError) Error() string { return e.Message }

func (e *CouponRejectedError) Is(target error) bool { return target == ErrCouponRejected }
