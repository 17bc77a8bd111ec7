package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Resolver answers capability checks for a user. Satisfied by *Service and by
// test fakes.
type Resolver interface {
	Can(ctx context.Context, userID int64, cap Capability) (bool, error)
	RoleOfUser(ctx context.Context, userID int64) (Role, error)
}

// Service resolves user roles and effective capabilities.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// RoleOfUser returns the single role assigned to the user.
func (s *Service) RoleOfUser(ctx context.Context, userID int64) (Role, error) {
	const query = `
		SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1`
	var role Role
	err := s.pool.QueryRow(ctx, query, userID).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// EffectiveCapabilities returns the deduplicated capability set for a user.
// Admins receive the full set.
func (s *Service) EffectiveCapabilities(ctx context.Context, userID int64) ([]Capability, error) {
	role, err := s.RoleOfUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if role.Name == AdminRole {
		return AllCapabilities(), nil
	}

	const query = `
		SELECT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`
	rows, err := s.pool.Query(ctx, query, role.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caps []Capability
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cap, err := ParseCapability(name)
		if err != nil {
			continue
		}
		caps = append(caps, cap)
	}
	return caps, rows.Err()
}

// Can reports whether the user holds the capability.
func (s *Service) Can(ctx context.Context, userID int64, cap Capability) (bool, error) {
	role, err := s.RoleOfUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if role.Name == AdminRole {
		return true, nil
	}

	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM permissions p
			JOIN role_permissions rp ON rp.permission_id = p.id
			WHERE rp.role_id = $1 AND p.name = $2
		)`
	var allowed bool
	if err := s.pool.QueryRow(ctx, query, role.ID, cap.String()).Scan(&allowed); err != nil {
		return false, err
	}
	return allowed, nil
}

// AssignRole replaces the user's role assignment; a user holds exactly one
// application role at a time.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role_id = EXCLUDED.role_id`, userID, roleID)
	return err
}
