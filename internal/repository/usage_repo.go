package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Cheertaboi/shop-service/internal/models"
)

// UsageRepo guards the coupon usage counter. Both methods are meant to run
// inside the order-placement transaction.
type UsageRepo struct {
	db DBTX
}

func NewUsageRepo(db DBTX) *UsageRepo {
	return &UsageRepo{db: db}
}

func (r *UsageRepo) WithTx(tx *sql.Tx) *UsageRepo {
	return &UsageRepo{db: tx}
}

// GetAndLock loads the coupon by code AND locks its row for update.
func (r *UsageRepo) GetAndLock(ctx context.Context, code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons c WHERE c.code = $1 FOR UPDATE`
	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// IncrementUsage bumps times_used unless that would pass usage_limit.
func (r *UsageRepo) IncrementUsage(ctx context.Context, couponID int64) error {
	query := `
		UPDATE coupons
		SET times_used = times_used + 1
		WHERE id = $1 AND (usage_limit IS NULL OR times_used < usage_limit)`

	res, err := r.db.ExecContext(ctx, query, couponID)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return expectOne(res, models.ErrConflict)
}
