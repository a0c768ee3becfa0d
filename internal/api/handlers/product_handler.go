package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
)

type ProductService interface {
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	List(ctx context.Context, skip, limit int) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	svc ProductService
	log *zap.Logger
}

func NewProductHandler(svc ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: log}
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err, "Product")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	products, err := h.svc.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, h.log, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, h.log, err, "Product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, h.log, err, "Product")
		return
	}
	writeMessage(w, "Product deleted successfully")
}
