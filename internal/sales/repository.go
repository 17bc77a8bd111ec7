package sales

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
	GetSale(ctx context.Context, id int64) (Sale, []SaleDetail, []SalePayment, error)
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]Sale, int, error)
}

// TxRepository exposes the row-level operations the workflow composes inside
// one transaction.
type TxRepository interface {
	InsertSale(ctx context.Context, s Sale) (int64, error)
	GetSaleForUpdate(ctx context.Context, id int64) (Sale, error)
	UpdateHeader(ctx context.Context, id int64, input HeaderInput) error
	SetSaleTotal(ctx context.Context, id int64, total float64) error
	SetSaleStatus(ctx context.Context, id int64, status string) error
	DeleteSale(ctx context.Context, id int64) error

	InsertDetail(ctx context.Context, d SaleDetail) (int64, error)
	GetDetail(ctx context.Context, id int64) (SaleDetail, error)
	UpdateDetail(ctx context.Context, id int64, qty int, unitPrice float64) error
	DeleteDetail(ctx context.Context, id int64) error
	DetailsOfSale(ctx context.Context, saleID int64) ([]SaleDetail, error)
	DeleteDetailsOfSale(ctx context.Context, saleID int64) error

	InsertPayment(ctx context.Context, p SalePayment) (int64, error)
	GetPayment(ctx context.Context, id int64) (SalePayment, error)
	UpdatePayment(ctx context.Context, id int64, method string, amount float64, reference string) error
	DeletePayment(ctx context.Context, id int64) error
	PaymentsOfSale(ctx context.Context, saleID int64) ([]SalePayment, error)
	DeletePaymentsOfSale(ctx context.Context, saleID int64) error

	GetProductForUpdate(ctx context.Context, productID int64) (ProductState, error)
	AddStock(ctx context.Context, productID int64, delta int) error
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
		return fmt.Errorf("sales: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const saleColumns = `
	s.id, s.customer_id, COALESCE(c.name, ''), s.user_id, COALESCE(u.name, ''),
	s.date, s.status, s.total,
	COALESCE((SELECT sum(sp.amount) FROM sale_payments sp WHERE sp.sale_id = s.id), 0),
	s.created_at, s.updated_at`

const saleJoins = `
	FROM sales s
	LEFT JOIN customers c ON c.id = s.customer_id
	LEFT JOIN users u ON u.id = s.user_id`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.CustomerName, &s.UserID, &s.UserName,
		&s.Date, &s.Status, &s.Total, &s.Paid, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetSale fetches a header with its details and payments.
func (r *Repository) GetSale(ctx context.Context, id int64) (Sale, []SaleDetail, []SalePayment, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+saleJoins+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, nil, nil, httpx.ErrNotFound
		}
		return Sale{}, nil, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.sale_id, d.product_id, COALESCE(p.name, ''), d.quantity, d.unit_price
		FROM sale_details d
		LEFT JOIN products p ON p.id = d.product_id
		WHERE d.sale_id = $1
		ORDER BY d.id`, id)
	if err != nil {
		return Sale{}, nil, nil, err
	}
	defer rows.Close()

	var details []SaleDetail
	for rows.Next() {
		var d SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.ProductName, &d.Quantity, &d.UnitPrice); err != nil {
			return Sale{}, nil, nil, err
		}
		d.Subtotal = float64(d.Quantity) * d.UnitPrice
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return Sale{}, nil, nil, err
	}

	payRows, err := r.pool.Query(ctx, `
		SELECT id, sale_id, method, amount, COALESCE(reference, ''), paid_at
		FROM sale_payments WHERE sale_id = $1
		ORDER BY id`, id)
	if err != nil {
		return Sale{}, nil, nil, err
	}
	defer payRows.Close()

	var payments []SalePayment
	for payRows.Next() {
		var p SalePayment
		if err := payRows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.Reference, &p.PaidAt); err != nil {
			return Sale{}, nil, nil, err
		}
		payments = append(payments, p)
	}
	return s, details, payments, payRows.Err()
}

// List returns a page of sale headers with paid sums.
func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Sale, int, error) {
	where := ` WHERE COALESCE(c.name, '') ILIKE '%' || $1 || '%'`
	args := []any{filters.Search}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(` AND s.status = $%d`, len(args))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		where += fmt.Sprintf(` AND s.date >= $%d`, len(args))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		where += fmt.Sprintf(` AND s.date <= $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*)`+saleJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+saleJoins+where+
			fmt.Sprintf(` ORDER BY s.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (t txRepository) InsertSale(ctx context.Context, s Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO sales (customer_id, user_id, date, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id`,
		s.CustomerID, s.UserID, s.Date, s.Status, s.Total).Scan(&id)
	return id, err
}

func (t txRepository) GetSaleForUpdate(ctx context.Context, id int64) (Sale, error) {
	var s Sale
	err := t.tx.QueryRow(ctx, `
		SELECT id, customer_id, user_id, date, status, total, created_at, updated_at
		FROM sales WHERE id = $1
		FOR UPDATE`, id).
		Scan(&s.ID, &s.CustomerID, &s.UserID, &s.Date, &s.Status, &s.Total, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, httpx.ErrNotFound
		}
		return Sale{}, err
	}
	return s, nil
}

func (t txRepository) UpdateHeader(ctx context.Context, id int64, input HeaderInput) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE sales SET customer_id = $2, date = $3, updated_at = NOW() WHERE id = $1`,
		id, input.CustomerID, input.Date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (t txRepository) SetSaleTotal(ctx context.Context, id int64, total float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE sales SET total = $2, updated_at = NOW() WHERE id = $1`, id, total)
	return err
}

func (t txRepository) SetSaleStatus(ctx context.Context, id int64, status string) error {
	_, err := t.tx.Exec(ctx, `UPDATE sales SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (t txRepository) DeleteSale(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return err
}

func (t txRepository) InsertDetail(ctx context.Context, d SaleDetail) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO sale_details (sale_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		d.SaleID, d.ProductID, d.Quantity, d.UnitPrice).Scan(&id)
	return id, err
}

func (t txRepository) GetDetail(ctx context.Context, id int64) (SaleDetail, error) {
	var d SaleDetail
	err := t.tx.QueryRow(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price
		FROM sale_details WHERE id = $1
		FOR UPDATE`, id).
		Scan(&d.ID, &d.SaleID, &d.ProductID, &d.Quantity, &d.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SaleDetail{}, httpx.ErrNotFound
		}
		return SaleDetail{}, err
	}
	d.Subtotal = float64(d.Quantity) * d.UnitPrice
	return d, nil
}

func (t txRepository) UpdateDetail(ctx context.Context, id int64, qty int, unitPrice float64) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE sale_details SET quantity = $2, unit_price = $3 WHERE id = $1`, id, qty, unitPrice)
	return err
}

func (t txRepository) DeleteDetail(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sale_details WHERE id = $1`, id)
	return err
}

func (t txRepository) DetailsOfSale(ctx context.Context, saleID int64) ([]SaleDetail, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price
		FROM sale_details WHERE sale_id = $1
		ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaleDetail
	for rows.Next() {
		var d SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.Quantity, &d.UnitPrice); err != nil {
			return nil, err
		}
		d.Subtotal = float64(d.Quantity) * d.UnitPrice
		out = append(out, d)
	}
	return out, rows.Err()
}

func (t txRepository) DeleteDetailsOfSale(ctx context.Context, saleID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sale_details WHERE sale_id = $1`, saleID)
	return err
}

func (t txRepository) InsertPayment(ctx context.Context, p SalePayment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO sale_payments (sale_id, method, amount, reference, paid_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id`,
		p.SaleID, p.Method, p.Amount, p.Reference, p.PaidAt).Scan(&id)
	return id, err
}

func (t txRepository) GetPayment(ctx context.Context, id int64) (SalePayment, error) {
	var p SalePayment
	err := t.tx.QueryRow(ctx, `
		SELECT id, sale_id, method, amount, COALESCE(reference, ''), paid_at
		FROM sale_payments WHERE id = $1
		FOR UPDATE`, id).
		Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.Reference, &p.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalePayment{}, httpx.ErrNotFound
		}
		return SalePayment{}, err
	}
	return p, nil
}

func (t txRepository) UpdatePayment(ctx context.Context, id int64, method string, amount float64, reference string) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE sale_payments SET method = $2, amount = $3, reference = NULLIF($4, '')
		WHERE id = $1`, id, method, amount, reference)
	return err
}

func (t txRepository) DeletePayment(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sale_payments WHERE id = $1`, id)
	return err
}

func (t txRepository) PaymentsOfSale(ctx context.Context, saleID int64) ([]SalePayment, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, sale_id, method, amount, COALESCE(reference, ''), paid_at
		FROM sale_payments WHERE sale_id = $1
		ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalePayment
	for rows.Next() {
		var p SalePayment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.Reference, &p.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t txRepository) DeletePaymentsOfSale(ctx context.Context, saleID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sale_payments WHERE sale_id = $1`, saleID)
	return err
}

func (t txRepository) GetProductForUpdate(ctx context.Context, productID int64) (ProductState, error) {
	var p ProductState
	err := t.tx.QueryRow(ctx, `
		SELECT id, name, stock FROM products WHERE id = $1
		FOR UPDATE`, productID).Scan(&p.ID, &p.Name, &p.Stock)
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
