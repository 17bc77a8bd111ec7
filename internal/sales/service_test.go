package sales

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
)

type memoryRepo struct {
	nextID   int64
	sales    map[int64]Sale
	details  map[int64]SaleDetail
	payments map[int64]SalePayment
	products map[int64]*ProductState
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:   1,
		sales:    make(map[int64]Sale),
		details:  make(map[int64]SaleDetail),
		payments: make(map[int64]SalePayment),
		products: make(map[int64]*ProductState),
	}
}

func (r *memoryRepo) id() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *memoryRepo) snapshot() *memoryRepo {
	clone := newMemoryRepo()
	clone.nextID = r.nextID
	for k, v := range r.sales {
		clone.sales[k] = v
	}
	for k, v := range r.details {
		clone.details[k] = v
	}
	for k, v := range r.payments {
		clone.payments[k] = v
	}
	for k, v := range r.products {
		p := *v
		clone.products[k] = &p
	}
	return clone
}

func (r *memoryRepo) restore(snap *memoryRepo) {
	r.nextID = snap.nextID
	r.sales = snap.sales
	r.details = snap.details
	r.payments = snap.payments
	r.products = snap.products
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := r.snapshot()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *memoryRepo) GetSale(_ context.Context, id int64) (Sale, []SaleDetail, []SalePayment, error) {
	s, ok := r.sales[id]
	if !ok {
		return Sale{}, nil, nil, httpx.ErrNotFound
	}
	payments := r.paymentsOf(id)
	s.Paid = 0
	for _, p := range payments {
		s.Paid += p.Amount
	}
	return s, r.detailsOf(id), payments, nil
}

func (r *memoryRepo) List(_ context.Context, _ ListFilters, _, _ int) ([]Sale, int, error) {
	var out []Sale
	for _, s := range r.sales {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memoryRepo) detailsOf(saleID int64) []SaleDetail {
	var out []SaleDetail
	for _, d := range r.details {
		if d.SaleID == saleID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryRepo) paymentsOf(saleID int64) []SalePayment {
	var out []SalePayment
	for _, p := range r.payments {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *memoryTx) InsertSale(_ context.Context, s Sale) (int64, error) {
	s.ID = t.repo.id()
	t.repo.sales[s.ID] = s
	return s.ID, nil
}

func (t *memoryTx) GetSaleForUpdate(_ context.Context, id int64) (Sale, error) {
	s, ok := t.repo.sales[id]
	if !ok {
		return Sale{}, httpx.ErrNotFound
	}
	return s, nil
}

func (t *memoryTx) UpdateHeader(_ context.Context, id int64, input HeaderInput) error {
	s, ok := t.repo.sales[id]
	if !ok {
		return httpx.ErrNotFound
	}
	s.CustomerID = input.CustomerID
	s.Date = input.Date
	t.repo.sales[id] = s
	return nil
}

func (t *memoryTx) SetSaleTotal(_ context.Context, id int64, total float64) error {
	s := t.repo.sales[id]
	s.Total = total
	t.repo.sales[id] = s
	return nil
}

func (t *memoryTx) SetSaleStatus(_ context.Context, id int64, status string) error {
	s := t.repo.sales[id]
	s.Status = status
	t.repo.sales[id] = s
	return nil
}

func (t *memoryTx) DeleteSale(_ context.Context, id int64) error {
	delete(t.repo.sales, id)
	return nil
}

func (t *memoryTx) InsertDetail(_ context.Context, d SaleDetail) (int64, error) {
	d.ID = t.repo.id()
	t.repo.details[d.ID] = d
	return d.ID, nil
}

func (t *memoryTx) GetDetail(_ context.Context, id int64) (SaleDetail, error) {
	d, ok := t.repo.details[id]
	if !ok {
		return SaleDetail{}, httpx.ErrNotFound
	}
	return d, nil
}

func (t *memoryTx) UpdateDetail(_ context.Context, id int64, qty int, unitPrice float64) error {
	d := t.repo.details[id]
	d.Quantity = qty
	d.UnitPrice = unitPrice
	t.repo.details[id] = d
	return nil
}

func (t *memoryTx) DeleteDetail(_ context.Context, id int64) error {
	delete(t.repo.details, id)
	return nil
}

func (t *memoryTx) DetailsOfSale(_ context.Context, saleID int64) ([]SaleDetail, error) {
	return t.repo.detailsOf(saleID), nil
}

func (t *memoryTx) DeleteDetailsOfSale(_ context.Context, saleID int64) error {
	for id, d := range t.repo.details {
		if d.SaleID == saleID {
			delete(t.repo.details, id)
		}
	}
	return nil
}

func (t *memoryTx) InsertPayment(_ context.Context, p SalePayment) (int64, error) {
	p.ID = t.repo.id()
	t.repo.payments[p.ID] = p
	return p.ID, nil
}

func (t *memoryTx) GetPayment(_ context.Context, id int64) (SalePayment, error) {
	p, ok := t.repo.payments[id]
	if !ok {
		return SalePayment{}, httpx.ErrNotFound
	}
	return p, nil
}

func (t *memoryTx) UpdatePayment(_ context.Context, id int64, method string, amount float64, reference string) error {
	p := t.repo.payments[id]
	p.Method = method
	p.Amount = amount
	p.Reference = reference
	t.repo.payments[id] = p
	return nil
}

func (t *memoryTx) DeletePayment(_ context.Context, id int64) error {
	delete(t.repo.payments, id)
	return nil
}

func (t *memoryTx) PaymentsOfSale(_ context.Context, saleID int64) ([]SalePayment, error) {
	return t.repo.paymentsOf(saleID), nil
}

func (t *memoryTx) DeletePaymentsOfSale(_ context.Context, saleID int64) error {
	for id, p := range t.repo.payments {
		if p.SaleID == saleID {
			delete(t.repo.payments, id)
		}
	}
	return nil
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

func seedProduct(repo *memoryRepo, id int64, name string, stock int) {
	repo.products[id] = &ProductState{ID: id, Name: name, Stock: stock}
}

func saleDate() time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
}

func createSale(t *testing.T, svc *Service, items []ItemInput, payments []PaymentInput) Sale {
	t.Helper()
	sale, err := svc.Create(context.Background(), CreateInput{
		Date:     saleDate(),
		Items:    items,
		Payments: payments,
	})
	require.NoError(t, err)
	return sale
}

func TestCreateMovesStockAndComputesTotal(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 10}},
	)

	require.Equal(t, 20.0, sale.Total)
	require.Equal(t, 10.0, sale.Paid)
	require.Equal(t, StatusPending, sale.Status)
	require.Equal(t, 6, repo.products[1].Stock)
}

func TestCreateFullPaymentFlipsToPaid(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 2, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodQR, Amount: 10}},
	)
	require.Equal(t, StatusPaid, sale.Status)
}

func TestCreateOversellRejectsWholeSubmission(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	seedProduct(repo, 2, "Tea", 1)
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Date: saleDate(),
		Items: []ItemInput{
			{ProductID: 1, Quantity: 4, UnitPrice: 5},
			{ProductID: 2, Quantity: 3, UnitPrice: 2},
		},
		Payments: []PaymentInput{{Method: MethodCash, Amount: 5}},
	})
	require.ErrorIs(t, err, httpx.ErrBusinessRule)

	// nothing committed, both stocks untouched
	require.Equal(t, 10, repo.products[1].Stock)
	require.Equal(t, 1, repo.products[2].Stock)
	require.Empty(t, repo.sales)
}

func TestCreateRejectsInvalidPaymentMethod(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Date:     saleDate(),
		Items:    []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
		Payments: []PaymentInput{{Method: "barter", Amount: 5}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateDetailIncreaseBeyondStockRejected(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 5)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 5}},
	)
	detail := repo.detailsOf(sale.ID)[0]

	// stock is 1 now, increase of +2 cannot be served
	_, err := svc.UpdateDetail(context.Background(), detail.ID, DetailInput{Quantity: 6, UnitPrice: 5})
	require.ErrorIs(t, err, httpx.ErrBusinessRule)
	require.Equal(t, 1, repo.products[1].Stock)
}

func TestUpdateDetailAppliesDeltaAndRecomputesTotal(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 5}},
	)
	detail := repo.detailsOf(sale.ID)[0]

	result, err := svc.UpdateDetail(context.Background(), detail.ID, DetailInput{Quantity: 2, UnitPrice: 6})
	require.NoError(t, err)
	require.Equal(t, 12.0, result.Total)
	require.Equal(t, 8, repo.products[1].Stock)
	require.Equal(t, 12.0, repo.sales[sale.ID].Total)
}

func TestDeleteDetailRestoresStock(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	seedProduct(repo, 2, "Tea", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{
			{ProductID: 1, Quantity: 4, UnitPrice: 5},
			{ProductID: 2, Quantity: 1, UnitPrice: 2},
		},
		[]PaymentInput{{Method: MethodCash, Amount: 5}},
	)
	details := repo.detailsOf(sale.ID)

	result, err := svc.DeleteDetail(context.Background(), details[0].ID)
	require.NoError(t, err)
	require.False(t, result.DeletedSale)
	require.Equal(t, 10, repo.products[1].Stock)
	require.Equal(t, 2.0, result.Total)
}

func TestDeleteLastDetailDeletesSale(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 5}},
	)
	detail := repo.detailsOf(sale.ID)[0]

	result, err := svc.DeleteDetail(context.Background(), detail.ID)
	require.NoError(t, err)
	require.True(t, result.DeletedSale)
	require.NotContains(t, repo.sales, sale.ID)
	require.Empty(t, repo.paymentsOf(sale.ID))
	require.Equal(t, 10, repo.products[1].Stock)
}

func TestAddPaymentFlipsToPaidAtTotal(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 5}},
	)

	result, err := svc.AddPayment(context.Background(), sale.ID, PaymentInput{Method: MethodTransfer, Amount: 15})
	require.NoError(t, err)
	require.Equal(t, 20.0, result.Paid)
	require.Equal(t, StatusPaid, result.Status)
	require.Equal(t, StatusPaid, repo.sales[sale.ID].Status)
}

func TestUpdatePaymentLeavesStatusAlone(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 5}},
	)
	payment := repo.paymentsOf(sale.ID)[0]

	// editing the payment up to the full total must not flip the sale
	result, err := svc.UpdatePayment(context.Background(), payment.ID, PaymentInput{Method: MethodCash, Amount: 20})
	require.NoError(t, err)
	require.Equal(t, 20.0, result.Paid)
	require.Equal(t, StatusPending, result.Status)
	require.Equal(t, StatusPending, repo.sales[sale.ID].Status)

	// only an added payment reaches paid
	added, err := svc.AddPayment(context.Background(), sale.ID, PaymentInput{Method: MethodQR, Amount: 1})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, added.Status)
}

func TestDeletePaymentNeverRevertsPaidStatus(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 20}},
	)
	require.Equal(t, StatusPaid, repo.sales[sale.ID].Status)
	payment := repo.paymentsOf(sale.ID)[0]

	result, err := svc.DeletePayment(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Paid)
	require.Equal(t, StatusPaid, repo.sales[sale.ID].Status)
}

func TestCancelRestoresStockAndPurges(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 4, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 20}},
	)
	require.Equal(t, 6, repo.products[1].Stock)

	cancelled, err := svc.UpdateStatus(context.Background(), sale.ID, StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, 10, repo.products[1].Stock)
	require.Empty(t, repo.detailsOf(sale.ID))
	require.Empty(t, repo.paymentsOf(sale.ID))
	require.Contains(t, repo.sales, sale.ID)
}

func TestCancelledIsTerminal(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 1}},
	)
	_, err := svc.UpdateStatus(context.Background(), sale.ID, StatusCancelled)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), sale.ID, StatusPending)
	require.ErrorIs(t, err, httpx.ErrBusinessRule)

	_, err = svc.AddPayment(context.Background(), sale.ID, PaymentInput{Method: MethodCash, Amount: 1})
	require.ErrorIs(t, err, httpx.ErrBusinessRule)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(repo, 1, "Coffee", 10)
	svc := NewService(repo, nil)

	sale := createSale(t, svc,
		[]ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
		[]PaymentInput{{Method: MethodCash, Amount: 1}},
	)
	_, err := svc.UpdateStatus(context.Background(), sale.ID, "refunded")
	require.ErrorIs(t, err, httpx.ErrValidation)
}
