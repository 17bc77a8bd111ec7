package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Low stock products surface once they reach this threshold.
const lowStockThreshold = 10

const topProductLimit = 5

// Repository reads the dashboard aggregates.
type Repository interface {
	Summary(ctx context.Context) (Summary, error)
	TopSoldProducts(ctx context.Context, from, to time.Time) ([]ProductSales, error)
	LowStockProducts(ctx context.Context) ([]StockAlert, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a dashboard repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Summary returns the headline counters. Cancelled sales are excluded from
// the sales total since their stock and payments were already reverted.
func (r *repository) Summary(ctx context.Context) (Summary, error) {
	const query = `
		SELECT
			COALESCE((SELECT sum(total) FROM sales WHERE status <> 'cancelled'), 0),
			COALESCE((SELECT sum(total) FROM purchases), 0),
			(SELECT count(*) FROM customers),
			(SELECT count(*) FROM suppliers)`

	var summary Summary
	err := r.pool.QueryRow(ctx, query).Scan(
		&summary.SalesTotal, &summary.PurchasesTotal,
		&summary.CustomerCount, &summary.SupplierCount)
	return summary, err
}

// TopSoldProducts returns the best selling products within [from, to).
func (r *repository) TopSoldProducts(ctx context.Context, from, to time.Time) ([]ProductSales, error) {
	const query = `
		SELECT d.product_id, COALESCE(p.name, ''), sum(d.quantity)
		FROM sale_details d
		JOIN sales s ON s.id = d.sale_id
		LEFT JOIN products p ON p.id = d.product_id
		WHERE s.status <> 'cancelled' AND s.date >= $1 AND s.date < $2
		GROUP BY d.product_id, p.name
		ORDER BY sum(d.quantity) DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, from, to, topProductLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductSales
	for rows.Next() {
		var item ProductSales
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// LowStockProducts returns the five lowest stocked active products at or
// below the threshold, lowest first.
func (r *repository) LowStockProducts(ctx context.Context) ([]StockAlert, error) {
	const query = `
		SELECT id, name, stock
		FROM products
		WHERE is_active AND stock <= $1
		ORDER BY stock ASC, id ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, lowStockThreshold, topProductLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockAlert
	for rows.Next() {
		var alert StockAlert
		if err := rows.Scan(&alert.ProductID, &alert.Name, &alert.Stock); err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}
