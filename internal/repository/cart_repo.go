package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Cheertaboi/shop-service/internal/models"
)

const cartSelect = `
	SELECT ci.id, ci.session_id, ci.product_id, ci.quantity, ci.created_at,
	       p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category, p.created_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

type CartRepo struct {
	db DBTX
}

func NewCartRepo(db DBTX) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) WithTx(tx *sql.Tx) *CartRepo {
	return &CartRepo{db: tx}
}

func scanCartItem(row rowScanner) (*models.CartItem, error) {
	var it models.CartItem
	var p models.Product
	err := row.Scan(
		&it.ID, &it.SessionID, &it.ProductID, &it.Quantity, &it.CreatedAt,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.Category, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Product = &p
	return &it, nil
}

// ListBySession returns the session's lines with live product data.
func (r *CartRepo) ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartSelect+` WHERE ci.session_id = $1 ORDER BY ci.id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *CartRepo) Get(ctx context.Context, id int64) (*models.CartItem, error) {
	it, err := scanCartItem(r.db.QueryRowContext(ctx, cartSelect+` WHERE ci.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// Add inserts the line or, when the product is already in the cart, sums the
// quantities. It returns the resulting line id.
func (r *CartRepo) Add(ctx context.Context, sessionID string, productID int64, qty int) (int64, error) {
	query := `
		INSERT INTO cart_items (session_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, sessionID, productID, qty).Scan(&id); err != nil {
		return 0, fmt.Errorf("add to cart: %w", err)
	}
	return id, nil
}

// QuantityOf returns the quantity already in the cart for the product, 0 if none.
func (r *CartRepo) QuantityOf(ctx context.Context, sessionID string, productID int64) (int, error) {
	var qty int
	query := `SELECT quantity FROM cart_items WHERE session_id = $1 AND product_id = $2`
	err := r.db.QueryRowContext(ctx, query, sessionID, productID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return qty, err
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, id int64, qty int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, id, qty)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return expectOne(res, models.ErrNotFound)
}

func (r *CartRepo) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return expectOne(res, models.ErrNotFound)
}

func (r *CartRepo) Clear(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return res.RowsAffected()
}
