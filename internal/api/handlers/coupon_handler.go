package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/service"
)

type CouponService interface {
	Create(ctx context.Context, in models.CouponInput) (*models.Coupon, error)
	Get(ctx context.Context, id int64) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]models.Coupon, error)
	Update(ctx context.Context, id int64, patch models.CouponPatch) (*models.Coupon, error)
	Delete(ctx context.Context, id int64) error
	Validate(ctx context.Context, req models.ValidationRequest) (models.CouponDecision, error)
	Applicable(ctx context.Context, sessionID string) ([]service.ApplicableCoupon, error)
}

type CouponHandler struct {
	svc CouponService
	log *zap.Logger
}

func NewCouponHandler(svc CouponService, log *zap.Logger) *CouponHandler {
	return &CouponHandler{svc: svc, log: log}
}

type ApplicableResponse struct {
	SessionID         string                     `json:"session_id"`
	ApplicableCoupons []service.ApplicableCoupon `json:"applicable_coupons"`
}

// CreateCoupon handles POST /api/coupons
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var in models.CouponInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ListCoupons handles GET /api/coupons; active_only defaults to true.
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("active_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{"invalid active_only"})
			return
		}
		activeOnly = b
	}
	skip, limit := page(r)
	coupons, err := h.svc.List(r.Context(), activeOnly, skip, limit)
	if err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CouponHandler) GetCouponByCode(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var patch models.CouponPatch
	if !decode(w, r, &patch) {
		return
	}
	c, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeMessage(w, "Coupon deleted successfully")
}

// ValidateCoupon handles POST /api/coupons/validate. A rejected coupon is
// still a 200; the verdict is in the body.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.ValidationRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.svc.Validate(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetApplicableCoupons handles GET /api/coupons/applicable/{session_id}
func (h *CouponHandler) GetApplicableCoupons(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	list, err := h.svc.Applicable(r.Context(), sessionID)
	if err != nil {
		writeError(w, h.log, err, "Coupon")
		return
	}
	writeJSON(w, http.StatusOK, ApplicableResponse{SessionID: sessionID, ApplicableCoupons: list})
}
