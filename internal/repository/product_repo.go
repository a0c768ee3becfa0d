package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Cheertaboi/shop-service/internal/models"
)

const productColumns = `id, name, description, price, stock, image_url, category, created_at`

type ProductRepo struct {
	db DBTX
}

func NewProductRepo(db DBTX) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) WithTx(tx *sql.Tx) *ProductRepo {
	return &ProductRepo{db: tx}
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.Category, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, skip, limit int) ([]models.Product, error) {
	skip, limit = pageArgs(skip, limit)
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id OFFSET $1 LIMIT $2`
	return r.query(ctx, query, skip, limit)
}

// Count is used by the seeder to detect an initialised catalog.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

// GetMany loads the given products keyed by id. Missing ids are absent from
// the result.
func (r *ProductRepo) GetMany(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	return r.byID(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
}

// LockForUpdate is GetMany with the rows locked, in id order, until the
// surrounding transaction ends.
func (r *ProductRepo) LockForUpdate(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	return r.byID(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
}

func (r *ProductRepo) byID(ctx context.Context, query string, ids []int64) (map[int64]*models.Product, error) {
	list, err := r.query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*models.Product, len(list))
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (r *ProductRepo) query(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *ProductRepo) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, price, stock, image_url, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + productColumns
	return scanProduct(r.db.QueryRowContext(ctx, query,
		in.Name, in.Description, in.Price, in.Stock, in.ImageURL, in.Category))
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, image_url = $6, category = $7
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Category)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return expectOne(res, models.ErrNotFound)
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOne(res, models.ErrNotFound)
}

// DecrementStock only succeeds while enough stock is left.
func (r *ProductRepo) DecrementStock(ctx context.Context, id int64, qty int) error {
	query := `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`
	res, err := r.db.ExecContext(ctx, query, id, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return expectOne(res, models.ErrConflict)
}

func expectOne(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
