package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andino-pos/andino-pos/internal/platform/db"
	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
)

// Repository defines persistence operations for role management.
type Repository interface {
	List(ctx context.Context, search string, limit, offset int) ([]rbac.Role, int, error)
	FindByID(ctx context.Context, id int64) (rbac.Role, error)
	PermissionsOfRole(ctx context.Context, roleID int64) ([]string, error)
	Create(ctx context.Context, name, description string, permissions []string) (rbac.Role, error)
	Update(ctx context.Context, id int64, name, description string, permissions []string) (rbac.Role, error)
	Delete(ctx context.Context, id int64) error
	AssignedUserCount(ctx context.Context, roleID int64) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns a page of roles filtered by name.
func (r *PGRepository) List(ctx context.Context, search string, limit, offset int) ([]rbac.Role, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM roles WHERE name ILIKE '%' || $1 || '%'`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM roles
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []rbac.Role
	for rows.Next() {
		var role rbac.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, role)
	}
	return out, total, rows.Err()
}

// FindByID fetches a single role.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (rbac.Role, error) {
	var role rbac.Role
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rbac.Role{}, httpx.ErrNotFound
		}
		return rbac.Role{}, err
	}
	return role, nil
}

// PermissionsOfRole returns the permission names assigned to the role.
func (r *PGRepository) PermissionsOfRole(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Create inserts the role and its permission assignments atomically.
func (r *PGRepository) Create(ctx context.Context, name, description string, permissions []string) (rbac.Role, error) {
	var role rbac.Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO roles (name, description, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			RETURNING id, name, description, created_at, updated_at`, name, description).
			Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return httpx.ErrDuplicate
			}
			return err
		}
		return syncPermissions(ctx, tx, role.ID, permissions)
	})
	if err != nil {
		return rbac.Role{}, err
	}
	return role, nil
}

// Update renames the role and replaces its permission set atomically.
func (r *PGRepository) Update(ctx context.Context, id int64, name, description string, permissions []string) (rbac.Role, error) {
	var role rbac.Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE roles SET name = $2, description = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING id, name, description, created_at, updated_at`, id, name, description).
			Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return httpx.ErrNotFound
			}
			if db.IsUniqueViolation(err) {
				return httpx.ErrDuplicate
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		return syncPermissions(ctx, tx, id, permissions)
	})
	if err != nil {
		return rbac.Role{}, err
	}
	return role, nil
}

// Delete removes a role and its permission assignments.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

// AssignedUserCount reports how many users currently hold the role.
func (r *PGRepository) AssignedUserCount(ctx context.Context, roleID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM user_roles WHERE role_id = $1`, roleID).Scan(&count)
	return count, err
}

// syncPermissions upserts permission rows and links them to the role.
func syncPermissions(ctx context.Context, tx pgx.Tx, roleID int64, permissions []string) error {
	for _, name := range permissions {
		var permID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO permissions (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, name).Scan(&permID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, roleID, permID); err != nil {
			return err
		}
	}
	return nil
}
