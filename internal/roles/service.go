package roles

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
	"github.com/andino-pos/andino-pos/internal/shared"
)

// Service wraps role management business rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a new Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns a page of roles with pagination metadata.
func (s *Service) List(ctx context.Context, search string, page int) ([]rbac.Role, shared.Pagination, error) {
	pagination := shared.NewPagination(page, 10, 0)
	items, total, err := s.repo.List(ctx, search, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, pagination.PerPage, total), nil
}

// Show returns a role with its assigned permission names.
func (s *Service) Show(ctx context.Context, id int64) (rbac.Role, []string, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return rbac.Role{}, nil, err
	}
	perms, err := s.repo.PermissionsOfRole(ctx, id)
	if err != nil {
		return rbac.Role{}, nil, err
	}
	return role, perms, nil
}

// Create validates the permission list and stores a new role.
func (s *Service) Create(ctx context.Context, form roleForm) (rbac.Role, error) {
	perms, err := normalizePermissions(form.Permissions)
	if err != nil {
		return rbac.Role{}, err
	}
	role, err := s.repo.Create(ctx, strings.TrimSpace(form.Name), strings.TrimSpace(form.Description), perms)
	if err != nil {
		return rbac.Role{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "create", Entity: "role", EntityID: strconv.FormatInt(role.ID, 10), Meta: map[string]any{"name": role.Name}})
	return role, nil
}

// Update renames a role and replaces its permission set. The admin role is
// protected and cannot be modified.
func (s *Service) Update(ctx context.Context, id int64, form roleForm) (rbac.Role, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return rbac.Role{}, err
	}
	if existing.Name == rbac.AdminRole {
		return rbac.Role{}, fmt.Errorf("%w: the admin role cannot be modified", httpx.ErrForbidden)
	}
	perms, err := normalizePermissions(form.Permissions)
	if err != nil {
		return rbac.Role{}, err
	}
	role, err := s.repo.Update(ctx, id, strings.TrimSpace(form.Name), strings.TrimSpace(form.Description), perms)
	if err != nil {
		return rbac.Role{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "update", Entity: "role", EntityID: strconv.FormatInt(role.ID, 10), Meta: map[string]any{"name": role.Name}})
	return role, nil
}

// Delete removes a role. The admin role and roles still assigned to users are
// protected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Name == rbac.AdminRole {
		return fmt.Errorf("%w: the admin role cannot be deleted", httpx.ErrForbidden)
	}
	assigned, err := s.repo.AssignedUserCount(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return fmt.Errorf("%w: role is still assigned to %d user(s)", httpx.ErrBusinessRule, assigned)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "delete", Entity: "role", EntityID: strconv.FormatInt(id, 10), Meta: map[string]any{"name": existing.Name}})
	return nil
}

// normalizePermissions parses and deduplicates submitted capability names,
// rejecting any name outside the assignable catalog.
func normalizePermissions(names []string) ([]string, error) {
	catalog := make(map[string]struct{})
	for _, c := range rbac.AllCapabilities() {
		catalog[c.String()] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, raw := range names {
		cap, err := rbac.ParseCapability(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
		}
		name := cap.String()
		if _, ok := catalog[name]; !ok {
			return nil, fmt.Errorf("%w: unknown permission %q", httpx.ErrValidation, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
