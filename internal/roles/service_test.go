package roles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
)

type memoryRepo struct {
	nextID   int64
	roles    map[int64]rbac.Role
	perms    map[int64][]string
	assigned map[int64]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:   1,
		roles:    make(map[int64]rbac.Role),
		perms:    make(map[int64][]string),
		assigned: make(map[int64]int),
	}
}

func (r *memoryRepo) List(_ context.Context, _ string, _, _ int) ([]rbac.Role, int, error) {
	var out []rbac.Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, len(out), nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (rbac.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return rbac.Role{}, httpx.ErrNotFound
	}
	return role, nil
}

func (r *memoryRepo) PermissionsOfRole(_ context.Context, roleID int64) ([]string, error) {
	return r.perms[roleID], nil
}

func (r *memoryRepo) Create(_ context.Context, name, description string, permissions []string) (rbac.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return rbac.Role{}, httpx.ErrDuplicate
		}
	}
	role := rbac.Role{ID: r.nextID, Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.roles[role.ID] = role
	r.perms[role.ID] = permissions
	r.nextID++
	return role, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, name, description string, permissions []string) (rbac.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return rbac.Role{}, httpx.ErrNotFound
	}
	role.Name = name
	role.Description = description
	r.roles[id] = role
	r.perms[id] = permissions
	return role, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.roles, id)
	delete(r.perms, id)
	return nil
}

func (r *memoryRepo) AssignedUserCount(_ context.Context, roleID int64) (int, error) {
	return r.assigned[roleID], nil
}

func seedRole(repo *memoryRepo, name string) rbac.Role {
	role, _ := repo.Create(context.Background(), name, "", nil)
	return role
}

func TestCreateRejectsUnknownPermission(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Create(context.Background(), roleForm{
		Name:        "cashier",
		Permissions: []string{"sale.view", "warehouse.teleport"},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDeduplicatesPermissions(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	role, err := svc.Create(context.Background(), roleForm{
		Name:        "cashier",
		Permissions: []string{"sale.view", "Sale.View", "sale.create"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"sale.view", "sale.create"}, repo.perms[role.ID])
}

func TestUpdateAdminRoleForbidden(t *testing.T) {
	repo := newMemoryRepo()
	admin := seedRole(repo, rbac.AdminRole)
	svc := NewService(repo, nil)

	_, err := svc.Update(context.Background(), admin.ID, roleForm{Name: "superuser"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDeleteAdminRoleForbidden(t *testing.T) {
	repo := newMemoryRepo()
	admin := seedRole(repo, rbac.AdminRole)
	svc := NewService(repo, nil)

	err := svc.Delete(context.Background(), admin.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDeleteAssignedRoleRejected(t *testing.T) {
	repo := newMemoryRepo()
	role := seedRole(repo, "cashier")
	repo.assigned[role.ID] = 2
	svc := NewService(repo, nil)

	err := svc.Delete(context.Background(), role.ID)
	require.ErrorIs(t, err, httpx.ErrBusinessRule)
}

func TestDeleteRole(t *testing.T) {
	repo := newMemoryRepo()
	role := seedRole(repo, "cashier")
	svc := NewService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), role.ID))

	err := svc.Delete(context.Background(), role.ID)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}
