package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	ListBySession(ctx context.Context, sessionID string, skip, limit int) ([]models.Order, error)
}

type OrderHandler struct {
	svc OrderService
	log *zap.Logger
}

func NewOrderHandler(svc OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// PlaceOrder handles POST /api/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err, "Order")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err, "Order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListSessionOrders(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	orders, err := h.svc.ListBySession(r.Context(), chi.URLParam(r, "session_id"), skip, limit)
	if err != nil {
		writeError(w, h.log, err, "Order")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
