package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/rbac"
	"github.com/andino-pos/andino-pos/internal/shared"
)

type memoryRepo struct {
	nextID int64
	users  map[int64]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, users: make(map[int64]User)}
}

func (r *memoryRepo) List(_ context.Context, _ string, _, _ int) ([]User, int, error) {
	var out []User
	for _, u := range r.users {
		if u.RoleName == rbac.AdminRole {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) Create(_ context.Context, user User, roleID int64) (User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return User{}, httpx.ErrDuplicate
		}
	}
	user.ID = r.nextID
	user.RoleID = roleID
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	r.nextID++
	return user, nil
}

func (r *memoryRepo) Update(_ context.Context, user User, roleID int64) (User, error) {
	existing, ok := r.users[user.ID]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.Phone = user.Phone
	existing.Address = user.Address
	existing.City = user.City
	existing.Image = user.Image
	existing.RoleID = roleID
	r.users[user.ID] = existing
	return existing, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id int64, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return nil
}

func (r *memoryRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func seedAccount(repo *memoryRepo, email, roleName string) User {
	user, _ := repo.Create(context.Background(), User{Name: "x", Email: email, RoleName: roleName, IsActive: true}, 1)
	return user
}

func asUser(id int64) context.Context {
	return shared.ContextWithUserID(context.Background(), id)
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), createForm{
		Name:     "Maria",
		Email:    "Maria@Example.com",
		Password: "super-secret",
		RoleID:   2,
	})
	require.NoError(t, err)
	require.Equal(t, "maria@example.com", created.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[created.ID].PasswordHash), []byte("super-secret")))
	require.True(t, created.IsActive)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	seedAccount(repo, "maria@example.com", "cashier")
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), createForm{
		Name: "Other", Email: "maria@example.com", Password: "super-secret", RoleID: 2,
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateAdminByOtherUserForbidden(t *testing.T) {
	repo := newMemoryRepo()
	admin := seedAccount(repo, "admin@example.com", rbac.AdminRole)
	svc := NewService(repo, nil)

	_, err := svc.Update(asUser(admin.ID+100), admin.ID, updateForm{
		Name: "Hacked", Email: "admin@example.com", RoleID: 1,
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateAdminBySelfAllowed(t *testing.T) {
	repo := newMemoryRepo()
	admin := seedAccount(repo, "admin@example.com", rbac.AdminRole)
	svc := NewService(repo, nil)

	updated, err := svc.Update(asUser(admin.ID), admin.ID, updateForm{
		Name: "Admin Renamed", Email: "admin@example.com", RoleID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, "Admin Renamed", updated.Name)
}

func TestUpdatePasswordGuardsAdmin(t *testing.T) {
	repo := newMemoryRepo()
	admin := seedAccount(repo, "admin@example.com", rbac.AdminRole)
	svc := NewService(repo, nil)

	err := svc.UpdatePassword(asUser(admin.ID+1), admin.ID, "new-password-1")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.UpdatePassword(asUser(admin.ID), admin.ID, "new-password-1"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[admin.ID].PasswordHash), []byte("new-password-1")))
}

func TestDeleteAdminForbidden(t *testing.T) {
	repo := newMemoryRepo()
	admin := seedAccount(repo, "admin@example.com", rbac.AdminRole)
	svc := NewService(repo, nil)

	err := svc.Delete(asUser(admin.ID), admin.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDeleteSelfRejected(t *testing.T) {
	repo := newMemoryRepo()
	user := seedAccount(repo, "cashier@example.com", "cashier")
	svc := NewService(repo, nil)

	err := svc.Delete(asUser(user.ID), user.ID)
	require.ErrorIs(t, err, httpx.ErrBusinessRule)
}

func TestListExcludesAdmins(t *testing.T) {
	repo := newMemoryRepo()
	seedAccount(repo, "admin@example.com", rbac.AdminRole)
	seedAccount(repo, "cashier@example.com", "cashier")
	svc := NewService(repo, nil)

	items, _, err := svc.List(context.Background(), "", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "cashier@example.com", items[0].Email)
}
