package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andino-pos/andino-pos/internal/masterdata/shared"
	"github.com/andino-pos/andino-pos/internal/platform/httpx"
)

type memoryRepo struct {
	nextID   int64
	products map[int64]Product
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, products: make(map[int64]Product)}
}

func (r *memoryRepo) List(_ context.Context, _ shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, httpx.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(_ context.Context, p Product) (Product, error) {
	p.ID = r.nextID
	r.products[p.ID] = p
	r.nextID++
	return p, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, p Product) (Product, error) {
	if _, ok := r.products[id]; !ok {
		return Product{}, httpx.ErrNotFound
	}
	p.ID = id
	r.products[id] = p
	return p, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Product{Name: "  "})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), Product{Name: "Coffee", Stock: -1})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), Product{Name: "Coffee", SalePrice: -2})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateAndGet(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Product{Name: " Coffee ", Stock: 5, PurchasePrice: 10, SalePrice: 15, IsActive: true})
	require.NoError(t, err)
	require.Equal(t, "Coffee", created.Name)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.Stock)
}

func TestGetInvalidID(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
