package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-service/internal/metrics"
)

var (
	fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	created  = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	productCols = []string{"id", "name", "description", "price", "stock", "image_url", "category", "created_at"}
	couponCols  = []string{
		"id", "code", "description", "discount_type", "discount_value", "minimum_purchase",
		"usage_limit", "times_used", "is_active", "valid_from", "valid_until", "created_at", "array",
	}
	cartCols = []string{
		"id", "session_id", "product_id", "quantity", "created_at",
		"id", "name", "description", "price", "stock", "image_url", "category", "created_at",
	}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows(productCols)
}

func addProduct(rows *sqlmock.Rows, id int64, name, price string, stock int64, category string) *sqlmock.Rows {
	return rows.AddRow(id, name, "", price, stock, nil, category, created)
}

func couponRows() *sqlmock.Rows {
	return sqlmock.NewRows(couponCols)
}

// addCoupon adds an active, unlimited, unbounded coupon row.
func addCoupon(rows *sqlmock.Rows, id int64, code, typ, value, min, products string) *sqlmock.Rows {
	return rows.AddRow(id, code, "", typ, value, min, nil, int64(0), true, nil, nil, created, products)
}

func cartRows() *sqlmock.Rows {
	return sqlmock.NewRows(cartCols)
}

func addCartLine(rows *sqlmock.Rows, id int64, session string, productID int64, qty int64, name, price string, stock int64, category string) *sqlmock.Rows {
	return rows.AddRow(id, session, productID, qty, created, productID, name, "", price, stock, nil, category, created)
}
