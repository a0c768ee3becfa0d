package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/lib/pq"
)

// ItemRepo maintains the coupon_products applicability set.
type ItemRepo struct {
	db DBTX
}

func NewItemRepo(db DBTX) *ItemRepo {
	return &ItemRepo{db: db}
}

func (r *ItemRepo) WithTx(tx *sql.Tx) *ItemRepo {
	return &ItemRepo{db: tx}
}

// ReplaceApplicableProducts swaps the coupon's product set. Ids that do not
// name an existing product are dropped. It returns the stored set.
func (r *ItemRepo) ReplaceApplicableProducts(ctx context.Context, couponID int64, productIDs []int64) ([]int64, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM coupon_products WHERE coupon_id = $1`, couponID); err != nil {
		return nil, fmt.Errorf("clear applicable products: %w", err)
	}
	if len(productIDs) == 0 {
		return []int64{}, nil
	}

	query := `
		INSERT INTO coupon_products (coupon_id, product_id)
		SELECT $1, p.id FROM products p WHERE p.id = ANY($2)
		ON CONFLICT DO NOTHING
		RETURNING product_id`
	rows, err := r.db.QueryContext(ctx, query, couponID, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("insert applicable products: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}
