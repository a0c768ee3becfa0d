package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateCouponCode = errors.New("coupon code already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("concurrent update conflict")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
