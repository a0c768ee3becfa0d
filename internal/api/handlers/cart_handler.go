package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/pricing"
)

type CartService interface {
	List(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Add(ctx context.Context, req models.AddToCartRequest) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, qty int) (*models.CartItem, error)
	Remove(ctx context.Context, itemID int64) error
	Clear(ctx context.Context, sessionID string) error
	Summary(ctx context.Context, sessionID, couponCode string) (pricing.CartSummary, error)
}

type CartHandler struct {
	svc CartService
	log *zap.Logger
}

func NewCartHandler(svc CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/cart/{id}, where id is the session id.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "Cart")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.svc.Add(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// UpdateCartItem handles PUT /api/cart/{id}, where id is the cart item id.
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.svc.UpdateQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		writeError(w, h.log, err, "Cart item")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CartHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(r.Context(), id); err != nil {
		writeError(w, h.log, err, "Cart item")
		return
	}
	writeMessage(w, "Item removed from cart")
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context(), chi.URLParam(r, "session_id")); err != nil {
		writeError(w, h.log, err, "Cart")
		return
	}
	writeMessage(w, "Cart cleared")
}

// GetSummary handles GET /api/cart/{id}/summary?coupon_code=
func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("coupon_code"))
	if err != nil {
		writeError(w, h.log, err, "Cart")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
