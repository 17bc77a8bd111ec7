package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andino-pos/andino-pos/internal/platform/db"
	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
)

// Repository defines persistence operations for user management.
type Repository interface {
	List(ctx context.Context, search string, limit, offset int) ([]User, int, error)
	FindByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User, roleID int64) (User, error)
	Update(ctx context.Context, user User, roleID int64) (User, error)
	UpdateStatus(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `
	u.id, u.name, u.email, COALESCE(u.phone, ''), COALESCE(u.address, ''),
	COALESCE(u.city, ''), COALESCE(u.image, ''), u.status, u.password_hash,
	COALESCE(r.id, 0), COALESCE(r.name, ''), u.created_at, u.updated_at`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Address,
		&user.City, &user.Image, &user.IsActive, &user.PasswordHash,
		&user.RoleID, &user.RoleName, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// List returns non-admin accounts filtered by name or email. Admin accounts
// are managed outside the panel listing.
func (r *PGRepository) List(ctx context.Context, search string, limit, offset int) ([]User, int, error) {
	const filter = `
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE COALESCE(r.name, '') <> $1
		  AND (u.name ILIKE '%' || $2 || '%' OR u.email ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) `+filter, rbac.AdminRole, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` `+filter+` ORDER BY u.id DESC LIMIT $3 OFFSET $4`,
		rbac.AdminRole, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, user)
	}
	return out, total, rows.Err()
}

// FindByID fetches a single account with its role.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Create inserts the account and its role assignment atomically.
func (r *PGRepository) Create(ctx context.Context, user User, roleID int64) (User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash, phone, address, city, image, status, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, NOW(), NOW())
			RETURNING id, created_at, updated_at`,
			user.Name, user.Email, user.PasswordHash, user.Phone, user.Address, user.City, user.Image, user.IsActive).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return httpx.ErrDuplicate
			}
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET role_id = EXCLUDED.role_id`, user.ID, roleID)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return r.FindByID(ctx, user.ID)
}

// Update persists profile fields and the role assignment atomically.
func (r *PGRepository) Update(ctx context.Context, user User, roleID int64) (User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET name = $2, email = $3, phone = NULLIF($4, ''), address = NULLIF($5, ''),
			    city = NULLIF($6, ''), image = NULLIF($7, ''), updated_at = NOW()
			WHERE id = $1`,
			user.ID, user.Name, user.Email, user.Phone, user.Address, user.City, user.Image)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return httpx.ErrDuplicate
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET role_id = EXCLUDED.role_id`, user.ID, roleID)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return r.FindByID(ctx, user.ID)
}

// UpdateStatus toggles the account's active flag.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes the account together with its role assignment and sessions.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}
