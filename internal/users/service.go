package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
	"github.com/andino-pos/andino-pos/internal/shared"
)

// Service wraps account management business rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a new Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns a page of non-admin accounts.
func (s *Service) List(ctx context.Context, search string, page int) ([]User, shared.Pagination, error) {
	pagination := shared.NewPagination(page, 10, 0)
	items, total, err := s.repo.List(ctx, search, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, pagination.PerPage, total), nil
}

// Show fetches a single account.
func (s *Service) Show(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new account with a bcrypt hashed password.
func (s *Service) Create(ctx context.Context, form createForm) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}
	user := User{
		Name:         strings.TrimSpace(form.Name),
		Email:        strings.ToLower(strings.TrimSpace(form.Email)),
		Phone:        strings.TrimSpace(form.Phone),
		Address:      strings.TrimSpace(form.Address),
		City:         strings.TrimSpace(form.City),
		Image:        strings.TrimSpace(form.Image),
		IsActive:     active,
		PasswordHash: string(hash),
	}
	created, err := s.repo.Create(ctx, user, form.RoleID)
	if err != nil {
		return User{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "create", Entity: "user", EntityID: strconv.FormatInt(created.ID, 10), Meta: map[string]any{"email": created.Email}})
	return created, nil
}

// Update persists profile changes. The admin account can only be changed by
// its own session.
func (s *Service) Update(ctx context.Context, id int64, form updateForm) (User, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.guardAdmin(ctx, existing); err != nil {
		return User{}, err
	}
	user := User{
		ID:      id,
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.ToLower(strings.TrimSpace(form.Email)),
		Phone:   strings.TrimSpace(form.Phone),
		Address: strings.TrimSpace(form.Address),
		City:    strings.TrimSpace(form.City),
		Image:   strings.TrimSpace(form.Image),
	}
	updated, err := s.repo.Update(ctx, user, form.RoleID)
	if err != nil {
		return User{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "update", Entity: "user", EntityID: strconv.FormatInt(id, 10), Meta: map[string]any{"email": updated.Email}})
	return updated, nil
}

// UpdateStatus toggles the active flag.
func (s *Service) UpdateStatus(ctx context.Context, id int64, active bool) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guardAdmin(ctx, existing); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, active); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "update_status", Entity: "user", EntityID: strconv.FormatInt(id, 10), Meta: map[string]any{"is_active": active}})
	return nil
}

// UpdatePassword replaces the account password.
func (s *Service) UpdatePassword(ctx context.Context, id int64, password string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guardAdmin(ctx, existing); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "update_password", Entity: "user", EntityID: strconv.FormatInt(id, 10)})
	return nil
}

// Delete removes an account. Admin accounts and the current session's own
// account cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.RoleName == rbac.AdminRole {
		return fmt.Errorf("%w: admin accounts cannot be deleted", httpx.ErrForbidden)
	}
	if shared.UserIDFromContext(ctx) == id {
		return fmt.Errorf("%w: cannot delete the current account", httpx.ErrBusinessRule)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "delete", Entity: "user", EntityID: strconv.FormatInt(id, 10), Meta: map[string]any{"email": existing.Email}})
	return nil
}

// guardAdmin rejects modifications to an admin account by anyone else.
func (s *Service) guardAdmin(ctx context.Context, target User) error {
	if target.RoleName != rbac.AdminRole {
		return nil
	}
	if shared.UserIDFromContext(ctx) != target.ID {
		return fmt.Errorf("%w: the admin account can only be changed by itself", httpx.ErrForbidden)
	}
	return nil
}
