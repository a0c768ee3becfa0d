package models

import "time"

type CartItem struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}

// CartLineRequest is a (product, quantity) pair as sent by clients.
type CartLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (l CartLineRequest) Validate() error {
	if l.ProductID <= 0 {
		return invalid("product_id is required")
	}
	return ValidateQuantity(l.Quantity)
}

func ValidateQuantity(qty int) error {
	if qty <= 0 {
		return invalid("quantity must be greater than 0")
	}
	return nil
}

type AddToCartRequest struct {
	SessionID string `json:"session_id"`
	CartLineRequest
}

func (r AddToCartRequest) Validate() error {
	if r.SessionID == "" {
		return invalid("session_id is required")
	}
	return r.CartLineRequest.Validate()
}
