package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Cheertaboi/shop-service/internal/models"
)

const orderColumns = `id, session_id, subtotal, discount_amount, total, coupon_code, created_at`

type OrderRepo struct {
	db DBTX
}

func NewOrderRepo(db DBTX) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) WithTx(tx *sql.Tx) *OrderRepo {
	return &OrderRepo{db: tx}
}

// Create inserts the order and its items, filling in the generated ids.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	insertOrder := `
		INSERT INTO orders (session_id, subtotal, discount_amount, total, coupon_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, insertOrder,
		o.SessionID, o.Subtotal, o.DiscountAmount, o.Total, o.CouponCode, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	insertItem := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := r.db.QueryRowContext(ctx, insertItem,
			o.ID, it.ProductID, it.ProductName, it.Quantity, it.Price,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.SessionID, &o.Subtotal, &o.DiscountAmount, &o.Total, &o.CouponCode, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Items = []models.OrderItem{}
	return &o, nil
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) ListBySession(ctx context.Context, sessionID string, skip, limit int) ([]models.Order, error) {
	skip, limit = pageArgs(skip, limit)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1 ORDER BY id OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, sessionID, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(refs))
	for _, o := range refs {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (r *OrderRepo) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}
