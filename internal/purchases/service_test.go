package purchases

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
)

type memoryRepo struct {
	nextID    int64
	purchases map[int64]Purchase
	details   map[int64]PurchaseDetail
	products  map[int64]*ProductState
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:    1,
		purchases: make(map[int64]Purchase),
		details:   make(map[int64]PurchaseDetail),
		products:  make(map[int64]*ProductState),
	}
}

func (r *memoryRepo) id() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetPurchase(_ context.Context, id int64) (Purchase, []PurchaseDetail, error) {
	p, ok := r.purchases[id]
	if !ok {
		return Purchase{}, nil, httpx.ErrNotFound
	}
	return p, r.detailsOf(id), nil
}

func (r *memoryRepo) List(_ context.Context, _ ListFilters, _, _ int) ([]Purchase, int, error) {
	var out []Purchase
	for _, p := range r.purchases {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) detailsOf(purchaseID int64) []PurchaseDetail {
	var out []PurchaseDetail
	for _, d := range r.details {
		if d.PurchaseID == purchaseID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *memoryTx) InsertPurchase(_ context.Context, p Purchase) (int64, error) {
	p.ID = t.repo.id()
	t.repo.purchases[p.ID] = p
	return p.ID, nil
}

func (t *memoryTx) UpdateHeader(_ context.Context, id int64, input HeaderInput) error {
	p, ok := t.repo.purchases[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.SupplierID = input.SupplierID
	p.Date = input.Date
	p.InvoiceNumber = input.InvoiceNumber
	p.Notes = input.Notes
	t.repo.purchases[id] = p
	return nil
}

func (t *memoryTx) SetPurchaseTotal(_ context.Context, id int64, total float64) error {
	p, ok := t.repo.purchases[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.Total = total
	t.repo.purchases[id] = p
	return nil
}

func (t *memoryTx) DeletePurchase(_ context.Context, id int64) error {
	delete(t.repo.purchases, id)
	return nil
}

func (t *memoryTx) InsertDetail(_ context.Context, d PurchaseDetail) (int64, error) {
	d.ID = t.repo.id()
	t.repo.details[d.ID] = d
	return d.ID, nil
}

func (t *memoryTx) GetDetail(_ context.Context, id int64) (PurchaseDetail, error) {
	d, ok := t.repo.details[id]
	if !ok {
		return PurchaseDetail{}, httpx.ErrNotFound
	}
	return d, nil
}

func (t *memoryTx) UpdateDetail(_ context.Context, id int64, qty int, unitPrice float64) error {
	d, ok := t.repo.details[id]
	if !ok {
		return httpx.ErrNotFound
	}
	d.Quantity = qty
	d.UnitPrice = unitPrice
	t.repo.details[id] = d
	return nil
}

func (t *memoryTx) DeleteDetail(_ context.Context, id int64) error {
	delete(t.repo.details, id)
	return nil
}

func (t *memoryTx) DetailsOfPurchase(_ context.Context, purchaseID int64) ([]PurchaseDetail, error) {
	return t.repo.detailsOf(purchaseID), nil
}

func (t *memoryTx) GetProductForUpdate(_ context.Context, productID int64) (ProductState, error) {
	p, ok := t.repo.products[productID]
	if !ok {
		return ProductState{}, httpx.ErrNotFound
	}
	return *p, nil
}

func (t *memoryTx) AddStock(_ context.Context, productID int64, delta int) error {
	t.repo.products[productID].Stock += delta
	return nil
}

func (t *memoryTx) AddStockClamped(_ context.Context, productID int64, delta int) error {
	p := t.repo.products[productID]
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

func (t *memoryTx) SetProductPurchasePrice(_ context.Context, productID int64, price float64) error {
	t.repo.products[productID].PurchasePrice = price
	return nil
}

func (t *memoryTx) SetProductPurchaseInfo(_ context.Context, productID int64, price float64, supplierID *int64) error {
	p := t.repo.products[productID]
	p.PurchasePrice = price
	p.SupplierID = supplierID
	return nil
}

func (t *memoryTx) LatestPurchaseInfo(_ context.Context, productID int64) (PurchaseInfo, bool, error) {
	var latest *PurchaseDetail
	for id, d := range t.repo.details {
		if d.ProductID != productID {
			continue
		}
		d := d
		d.ID = id
		if latest == nil || d.ID > latest.ID {
			latest = &d
		}
	}
	if latest == nil {
		return PurchaseInfo{}, false, nil
	}
	parent := t.repo.purchases[latest.PurchaseID]
	return PurchaseInfo{UnitPrice: latest.UnitPrice, SupplierID: parent.SupplierID}, true, nil
}

func seedProduct(repo *memoryRepo, id int64, stock int) {
	repo.products[id] = &ProductState{ID: id, Stock: stock}
}

func ptr(v int64) *int64 { return &v }

func createPurchase(t *testing.T, svc *Service, supplierID *int64, items ...ItemInput) Purchase {
	t.Helper()
	purchase, err := svc.Create(context.Background(), CreateInput{
		SupplierID: supplierID,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Items:      items,
	})
	require.NoError(t, err)
	return purchase
}

func TestCreateComputesTotalAndMovesStock(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 100, 3)
	svc := NewService(repo, nil)

	purchase := createPurchase(t, svc, ptr(7),
		ItemInput{ProductID: 100, Quantity: 5, UnitPrice: 2.5},
	)

	require.Equal(t, 12.5, purchase.Total)
	require.Equal(t, 8, repo.products[100].Stock)
	require.Equal(t, 2.5, repo.products[100].PurchasePrice)
	require.Equal(t, int64(7), *repo.products[100].SupplierID)
}

func TestCreateRequiresItems(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Create(context.Background(), CreateInput{Date: time.Now()})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateUnknownProductFails(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 100, 0)
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Date: time.Now(),
		Items: []ItemInput{
			{ProductID: 100, Quantity: 1, UnitPrice: 1},
			{ProductID: 999, Quantity: 1, UnitPrice: 1},
		},
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateDetailAppliesQuantityDelta(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 100, 0)
	svc := NewService(repo, nil)

	purchase := createPurchase(t, svc, nil, ItemInput{ProductID: 100, Quantity: 5, UnitPrice: 2})
	detail := repo.detailsOf(purchase.ID)[0]

	result, err := svc.UpdateDetail(context.Background(), detail.ID, DetailInput{Quantity: 8, UnitPrice: 3})
	require.NoError(t, err)

	// stock moved by +3, total recomputed from the new line
	require.Equal(t, 8, repo.products[100].Stock)
	require.Equal(t, 3.0, repo.products[100].PurchasePrice)
	require.Equal(t, 24.0, result.Total)
	require.Equal(t, 24.0, repo.purchases[purchase.ID].Total)
	require.Equal(t, 8, result.Detail.Quantity)
}

func TestUpdateDetailDecreaseCanGoNegativeOnPaper(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 100, 0)
	svc := NewService(repo, nil)

	purchase := createPurchase(t, svc, nil, ItemInput{ProductID: 100, Quantity: 5, UnitPrice: 2})
	detail := repo.detailsOf(purchase.ID)[0]

	// stock was sold elsewhere in the meantime
	repo.products[100].Stock = 1

	_, err := svc.UpdateDetail(context.Background(), detail.ID, DetailInput{Quantity: 2, UnitPrice: 2})
	require.NoError(t, err)
	require.Equal(t, -2, repo.products[100].Stock)
}

func TestDeleteDetailClampsStockAtZero(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 100, 0)
	svc := NewService(repo, nil)

	purchase := createPurchase(t, svc, nil,
		ItemInput{ProductID: 100, Quantity: 5, UnitPrice: 2},
		ItemInput{ProductID: 100, Quantity: 1, UnitPrice: 4},
	)
	details := repo.detailsOf(purchase.ID)

	// stock drained below the received quantity
	repo.products[100].Stock = 2

	result, err := svc.DeleteDetail(context.Background(), details[0].ID)
	require.NoError(t, err)
	require.False(t, result.DeletedPurchase)
	require.Equal(t, 0, repo.products[100].Stock)
	require.Equal(t, 4.0, result.Total)
}

func TestDeleteDetailResyncsPriceFromLatestRemaining(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 100, 0)
	svc := NewService(repo, nil)

	first := createPurchase(t, svc, ptr(1), ItemInput{ProductID: 100, Quantity: 2, UnitPrice: 10})
	second := createPurchase(t, svc, ptr(2), ItemInput{ProductID: 100, Quantity: 3, UnitPrice: 20})

	// deleting the newer line falls back to the older purchase's pricing
	result, err := svc.DeleteDetail(context.Background(), repo.detailsOf(second.ID)[0].ID)
	require.NoError(t, err)
	require.True(t, result.DeletedPurchase)
	require.Equal(t, 10.0, repo.products[100].PurchasePrice)
	require.Equal(t, int64(1), *repo.products[100].SupplierID)
	require.Equal(t, 20.0, repo.purchases[first.ID].Total)
}

func TestDeleteLastDetailCascadesToHeader(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 100, 0)
	svc := NewService(repo, nil)

	purchase := createPurchase(t, svc, nil, ItemInput{ProductID: 100, Quantity: 5, UnitPrice: 2})
	detail := repo.detailsOf(purchase.ID)[0]

	result, err := svc.DeleteDetail(context.Background(), detail.ID)
	require.NoError(t, err)
	require.True(t, result.DeletedPurchase)
	require.NotContains(t, repo.purchases, purchase.ID)
	require.Equal(t, 0.0, repo.products[100].PurchasePrice)
	require.Nil(t, repo.products[100].SupplierID)
}
