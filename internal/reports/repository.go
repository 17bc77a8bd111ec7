package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository projects detail rows for reporting.
type Repository interface {
	Rows(ctx context.Context, kind Kind, filters Filters, limit, offset int) ([]Row, int, error)
	AllRows(ctx context.Context, kind Kind, filters Filters) ([]Row, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a reporting repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const salesProjection = `
	SELECT s.date, 'S-' || s.id, COALESCE(c.name, ''), COALESCE(p.name, ''),
	       d.quantity, d.unit_price, d.quantity * d.unit_price
	FROM sale_details d
	JOIN sales s ON s.id = d.sale_id
	LEFT JOIN customers c ON c.id = s.customer_id
	LEFT JOIN products p ON p.id = d.product_id`

const salesCount = `
	SELECT count(*)
	FROM sale_details d
	JOIN sales s ON s.id = d.sale_id`

const purchasesProjection = `
	SELECT pu.date, COALESCE(pu.invoice_number, 'P-' || pu.id), COALESCE(su.name, ''), COALESCE(p.name, ''),
	       d.quantity, d.unit_price, d.quantity * d.unit_price
	FROM purchase_details d
	JOIN purchases pu ON pu.id = d.purchase_id
	LEFT JOIN suppliers su ON su.id = pu.supplier_id
	LEFT JOIN products p ON p.id = d.product_id`

const purchasesCount = `
	SELECT count(*)
	FROM purchase_details d
	JOIN purchases pu ON pu.id = d.purchase_id`

func queriesFor(kind Kind) (projection, count, dateCol string, err error) {
	switch kind {
	case KindSales:
		return salesProjection, salesCount, "s.date", nil
	case KindPurchases:
		return purchasesProjection, purchasesCount, "pu.date", nil
	default:
		return "", "", "", fmt.Errorf("reports: unknown kind %q", kind)
	}
}

func dateClause(dateCol string, filters Filters, args *[]any) string {
	where := " WHERE TRUE"
	if filters.From != nil {
		*args = append(*args, *filters.From)
		where += fmt.Sprintf(" AND %s >= $%d", dateCol, len(*args))
	}
	if filters.To != nil {
		*args = append(*args, *filters.To)
		where += fmt.Sprintf(" AND %s <= $%d", dateCol, len(*args))
	}
	return where
}

// Rows returns one page of the projection plus the total row count.
func (r *repository) Rows(ctx context.Context, kind Kind, filters Filters, limit, offset int) ([]Row, int, error) {
	projection, count, dateCol, err := queriesFor(kind)
	if err != nil {
		return nil, 0, err
	}

	var args []any
	where := dateClause(dateCol, filters, &args)

	var total int
	if err := r.pool.QueryRow(ctx, count+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		projection+where+fmt.Sprintf(" ORDER BY d.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectRows(rows)
	return out, total, err
}

// AllRows returns the unpaginated projection for export.
func (r *repository) AllRows(ctx context.Context, kind Kind, filters Filters) ([]Row, error) {
	projection, _, dateCol, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}

	var args []any
	where := dateClause(dateCol, filters, &args)

	rows, err := r.pool.Query(ctx, projection+where+" ORDER BY d.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

func collectRows(rows pgx.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Date, &row.Reference, &row.Counterparty, &row.ProductName,
			&row.Quantity, &row.UnitPrice, &row.Subtotal); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
