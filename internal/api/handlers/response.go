package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/models"
	"github.com/Cheertaboi/shop-service/internal/pricing"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, messageBody{Message: msg})
}

// writeError maps domain errors onto status codes. resource names the thing
// a bare ErrNotFound refers to, e.g. "Product".
func writeError(w http.ResponseWriter, log *zap.Logger, err error, resource string) {
	switch {
	case errors.Is(err, pricing.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{resource + " not found"})
	case errors.Is(err, models.ErrDuplicateCouponCode):
		writeJSON(w, http.StatusBadRequest, errorBody{"Coupon code already exists"})
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, pricing.ErrInsufficientStock),
		errors.Is(err, pricing.ErrCouponRejected),
		errors.Is(err, pricing.ErrEmptyOrder):
		writeJSON(w, http.StatusBadRequest, errorBody{err.Error()})
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{"Concurrent update, please retry"})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{"internal server error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"invalid request body"})
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{"invalid " + name})
		return 0, false
	}
	return id, true
}

// page reads skip/limit query params; bad values fall back to defaults.
func page(r *http.Request) (skip, limit int) {
	q := r.URL.Query()
	skip, _ = strconv.Atoi(q.Get("skip"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil {
		limit = 100
	}
	return skip, limit
}
