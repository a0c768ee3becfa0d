package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Cheertaboi/shop-service/internal/models"
)

const couponColumns = `
	c.id, c.code, c.description, c.discount_type, c.discount_value, c.minimum_purchase,
	c.usage_limit, c.times_used, c.is_active, c.valid_from, c.valid_until, c.created_at,
	ARRAY(SELECT cp.product_id FROM coupon_products cp WHERE cp.coupon_id = c.id ORDER BY cp.product_id)`

const uniqueViolation = "23505"

type CouponRepo struct {
	db DBTX
}

func NewCouponRepo(db DBTX) *CouponRepo {
	return &CouponRepo{db: db}
}

func (r *CouponRepo) WithTx(tx *sql.Tx) *CouponRepo {
	return &CouponRepo{db: tx}
}

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var c models.Coupon
	var ids []int64
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinimumPurchase,
		&c.UsageLimit,
		&c.TimesUsed,
		&c.IsActive,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.CreatedAt,
		pq.Array(&ids),
	)
	if err != nil {
		return nil, err
	}
	c.ApplicableProductIDs = ids
	return &c, nil
}

func (r *CouponRepo) getOne(ctx context.Context, query string, arg any) (*models.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CouponRepo) GetByID(ctx context.Context, id int64) (*models.Coupon, error) {
	return r.getOne(ctx, `SELECT `+couponColumns+` FROM coupons c WHERE c.id = $1`, id)
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return r.getOne(ctx, `SELECT `+couponColumns+` FROM coupons c WHERE c.code = $1`, code)
}

func (r *CouponRepo) List(ctx context.Context, activeOnly bool, skip, limit int) ([]models.Coupon, error) {
	skip, limit = pageArgs(skip, limit)
	query := `
		SELECT ` + couponColumns + `
		FROM coupons c
		WHERE NOT $1 OR c.is_active
		ORDER BY c.id
		OFFSET $2 LIMIT $3`
	return r.query(ctx, query, activeOnly, skip, limit)
}

// ListActive returns every active coupon, unpaginated.
func (r *CouponRepo) ListActive(ctx context.Context) ([]models.Coupon, error) {
	return r.query(ctx, `SELECT `+couponColumns+` FROM coupons c WHERE c.is_active ORDER BY c.id`)
}

func (r *CouponRepo) query(ctx context.Context, query string, args ...any) ([]models.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := []models.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

// Create inserts the coupon row and sets c.ID / c.CreatedAt. Applicable
// products are written separately through ItemRepo.
func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	query := `
		INSERT INTO coupons
		(code, description, discount_type, discount_value, minimum_purchase, usage_limit,
		 times_used, is_active, valid_from, valid_until, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,0,$7,$8,$9,NOW())
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		c.Code,
		c.Description,
		c.DiscountType,
		c.DiscountValue,
		c.MinimumPurchase,
		c.UsageLimit,
		c.IsActive,
		c.ValidFrom,
		c.ValidUntil,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateCouponCode
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// Update writes the editable fields; times_used is owned by UsageRepo.
func (r *CouponRepo) Update(ctx context.Context, c *models.Coupon) error {
	query := `
		UPDATE coupons
		SET description = $2, discount_type = $3, discount_value = $4, minimum_purchase = $5,
		    usage_limit = $6, is_active = $7, valid_until = $8
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.Description, c.DiscountType, c.DiscountValue, c.MinimumPurchase,
		c.UsageLimit, c.IsActive, c.ValidUntil)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	return expectOne(res, models.ErrNotFound)
}

func (r *CouponRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	return expectOne(res, models.ErrNotFound)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
