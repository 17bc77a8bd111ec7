package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andino-pos/andino-pos/internal/masterdata/shared"
	"github.com/andino-pos/andino-pos/internal/platform/db"
	"github.com/andino-pos/andino-pos/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `
	p.id, p.category_id, p.supplier_id, COALESCE(c.name, ''), COALESCE(s.name, ''),
	p.name, COALESCE(p.description, ''), p.stock, p.purchase_price, p.sale_price,
	p.status, p.created_at, p.updated_at`

const productJoins = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN suppliers s ON s.id = p.supplier_id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.SupplierID, &p.CategoryName, &p.SupplierName,
		&p.Name, &p.Description, &p.Stock, &p.PurchasePrice, &p.SalePrice,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	filters = filters.Normalize()

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM products p WHERE p.name ILIKE '%' || $1 || '%'`, filters.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+productJoins+`
		WHERE p.name ILIKE '%' || $1 || '%'
		ORDER BY p.id DESC
		LIMIT $2 OFFSET $3`, filters.Search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+productJoins+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, httpx.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (category_id, supplier_id, name, description, stock, purchase_price, sale_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`,
		product.CategoryID, product.SupplierID, product.Name, product.Description,
		product.Stock, product.PurchasePrice, product.SalePrice, product.IsActive).
		Scan(&product.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, httpx.ErrDuplicate
		}
		if db.IsForeignKeyViolation(err) {
			return Product{}, httpx.ErrValidation
		}
		return Product{}, err
	}
	return r.Get(ctx, product.ID)
}

func (r *repository) Update(ctx context.Context, id int64, product Product) (Product, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET category_id = $2, supplier_id = $3, name = $4, description = NULLIF($5, ''),
		    stock = $6, purchase_price = $7, sale_price = $8, status = $9, updated_at = NOW()
		WHERE id = $1`,
		id, product.CategoryID, product.SupplierID, product.Name, product.Description,
		product.Stock, product.PurchasePrice, product.SalePrice, product.IsActive)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, httpx.ErrDuplicate
		}
		if db.IsForeignKeyViolation(err) {
			return Product{}, httpx.ErrValidation
		}
		return Product{}, err
	}
	if tag.RowsAffected() == 0 {
		return Product{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return httpx.ErrBusinessRule
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
