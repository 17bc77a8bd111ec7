package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPurchase(ctx context.Context, id int64) (Purchase, []PurchaseDetail, error)
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]Purchase, int, error)
}

// TxRepository exposes the row-level operations the workflow composes inside
// one transaction.
type TxRepository interface {
	InsertPurchase(ctx context.Context, p Purchase) (int64, error)
	UpdateHeader(ctx context.Context, id int64, input HeaderInput) error
	SetPurchaseTotal(ctx context.Context, id int64, total float64) error
	DeletePurchase(ctx context.Context, id int64) error

	InsertDetail(ctx context.Context, d PurchaseDetail) (int64, error)
	GetDetail(ctx context.Context, id int64) (PurchaseDetail, error)
	UpdateDetail(ctx context.Context, id int64, qty int, unitPrice float64) error
	DeleteDetail(ctx context.Context, id int64) error
	DetailsOfPurchase(ctx context.Context, purchaseID int64) ([]PurchaseDetail, error)

	GetProductForUpdate(ctx context.Context, productID int64) (ProductState, error)
	AddStock(ctx context.Context, productID int64, delta int) error
	AddStockClamped(ctx context.Context, productID int64, delta int) error
	SetProductPurchasePrice(ctx context.Context, productID int64, price float64) error
	SetProductPurchaseInfo(ctx context.Context, productID int64, price float64, supplierID *int64) error
	LatestPurchaseInfo(ctx context.Context, productID int64) (PurchaseInfo, bool, error)
}

// Repository implements RepositoryPort on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("purchases: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const purchaseColumns = `
	p.id, p.supplier_id, COALESCE(s.name, ''), p.user_id, COALESCE(u.name, ''),
	p.date, COALESCE(p.invoice_number, ''), COALESCE(p.notes, ''), p.total,
	p.created_at, p.updated_at`

const purchaseJoins = `
	FROM purchases p
	LEFT JOIN suppliers s ON s.id = p.supplier_id
	LEFT JOIN users u ON u.id = p.user_id`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.UserID, &p.UserName,
		&p.Date, &p.InvoiceNumber, &p.Notes, &p.Total, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetPurchase fetches a header with its details.
func (r *Repository) GetPurchase(ctx context.Context, id int64) (Purchase, []PurchaseDetail, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx,
		`SELECT `+purchaseColumns+purchaseJoins+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Purchase{}, nil, httpx.ErrNotFound
		}
		return Purchase{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.purchase_id, d.product_id, COALESCE(pr.name, ''), d.quantity, d.unit_price
		FROM purchase_details d
		LEFT JOIN products pr ON pr.id = d.product_id
		WHERE d.purchase_id = $1
		ORDER BY d.id`, id)
	if err != nil {
		return Purchase{}, nil, err
	}
	defer rows.Close()

	var details []PurchaseDetail
	for rows.Next() {
		var d PurchaseDetail
		if err := rows.Scan(&d.ID, &d.PurchaseID, &d.ProductID, &d.ProductName, &d.Quantity, &d.UnitPrice); err != nil {
			return Purchase{}, nil, err
		}
		d.Subtotal = float64(d.Quantity) * d.UnitPrice
		details = append(details, d)
	}
	return p, details, rows.Err()
}

// List returns a page of purchase headers with joined names.
func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Purchase, int, error) {
	where := ` WHERE (COALESCE(s.name, '') ILIKE '%' || $1 || '%' OR COALESCE(p.invoice_number, '') ILIKE '%' || $1 || '%')`
	args := []any{filters.Search}
	if filters.From != nil {
		args = append(args, *filters.From)
		where += fmt.Sprintf(` AND p.date >= $%d`, len(args))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		where += fmt.Sprintf(` AND p.date <= $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*)`+purchaseJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+purchaseColumns+purchaseJoins+where+
			fmt.Sprintf(` ORDER BY p.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (t txRepository) InsertPurchase(ctx context.Context, p Purchase) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO purchases (supplier_id, user_id, date, invoice_number, notes, total, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NOW(), NOW())
		RETURNING id`,
		p.SupplierID, p.UserID, p.Date, p.InvoiceNumber, p.Notes, p.Total).Scan(&id)
	return id, err
}

func (t txRepository) UpdateHeader(ctx context.Context, id int64, input HeaderInput) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE purchases
		SET supplier_id = $2, date = $3, invoice_number = NULLIF($4, ''), notes = NULLIF($5, ''), updated_at = NOW()
		WHERE id = $1`,
		id, input.SupplierID, input.Date, input.InvoiceNumber, input.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (t txRepository) SetPurchaseTotal(ctx context.Context, id int64, total float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchases SET total = $2, updated_at = NOW() WHERE id = $1`, id, total)
	return err
}

func (t txRepository) DeletePurchase(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	return err
}

func (t txRepository) InsertDetail(ctx context.Context, d PurchaseDetail) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO purchase_details (purchase_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		d.PurchaseID, d.ProductID, d.Quantity, d.UnitPrice).Scan(&id)
	return id, err
}

func (t txRepository) GetDetail(ctx context.Context, id int64) (PurchaseDetail, error) {
	var d PurchaseDetail
	err := t.tx.QueryRow(ctx, `
		SELECT id, purchase_id, product_id, quantity, unit_price
		FROM purchase_details WHERE id = $1
		FOR UPDATE`, id).
		Scan(&d.ID, &d.PurchaseID, &d.ProductID, &d.Quantity, &d.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseDetail{}, httpx.ErrNotFound
		}
		return PurchaseDetail{}, err
	}
	d.Subtotal = float64(d.Quantity) * d.UnitPrice
	return d, nil
}

func (t txRepository) UpdateDetail(ctx context.Context, id int64, qty int, unitPrice float64) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE purchase_details SET quantity = $2, unit_price = $3 WHERE id = $1`, id, qty, unitPrice)
	return err
}

func (t txRepository) DeleteDetail(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM purchase_details WHERE id = $1`, id)
	return err
}

func (t txRepository) DetailsOfPurchase(ctx context.Context, purchaseID int64) ([]PurchaseDetail, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, purchase_id, product_id, quantity, unit_price
		FROM purchase_details WHERE purchase_id = $1
		ORDER BY id`, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseDetail
	for rows.Next() {
		var d PurchaseDetail
		if err := rows.Scan(&d.ID, &d.PurchaseID, &d.ProductID, &d.Quantity, &d.UnitPrice); err != nil {
			return nil, err
		}
		d.Subtotal = float64(d.Quantity) * d.UnitPrice
		out = append(out, d)
	}
	return out, rows.Err()
}

func (t txRepository) GetProductForUpdate(ctx context.Context, productID int64) (ProductState, error) {
	var p ProductState
	err := t.tx.QueryRow(ctx, `
		SELECT id, stock, purchase_price, supplier_id
		FROM products WHERE id = $1
		FOR UPDATE`, productID).
		Scan(&p.ID, &p.Stock, &p.PurchasePrice, &p.SupplierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductState{}, httpx.ErrNotFound
		}
		return ProductState{}, err
	}
	return p, nil
}

func (t txRepository) AddStock(ctx context.Context, productID int64, delta int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`, productID, delta)
	return err
}

// AddStockClamped never lets stock go below zero.
func (t txRepository) AddStockClamped(ctx context.Context, productID int64, delta int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE products SET stock = GREATEST(stock + $2, 0), updated_at = NOW() WHERE id = $1`, productID, delta)
	return err
}

func (t txRepository) SetProductPurchasePrice(ctx context.Context, productID int64, price float64) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE products SET purchase_price = $2, updated_at = NOW() WHERE id = $1`, productID, price)
	return err
}

func (t txRepository) SetProductPurchaseInfo(ctx context.Context, productID int64, price float64, supplierID *int64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE products SET purchase_price = $2, supplier_id = $3, updated_at = NOW()
		WHERE id = $1`, productID, price, supplierID)
	return err
}

// LatestPurchaseInfo finds the most recent remaining line for the product
// across all purchases.
func (t txRepository) LatestPurchaseInfo(ctx context.Context, productID int64) (PurchaseInfo, bool, error) {
	var info PurchaseInfo
	err := t.tx.QueryRow(ctx, `
		SELECT d.unit_price, p.supplier_id
		FROM purchase_details d
		JOIN purchases p ON p.id = d.purchase_id
		WHERE d.product_id = $1
		ORDER BY d.id DESC
		LIMIT 1`, productID).Scan(&info.UnitPrice, &info.SupplierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseInfo{}, false, nil
		}
		return PurchaseInfo{}, false, err
	}
	return info, true, nil
}
