package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	summary     Summary
	sold        map[time.Time][]ProductSales
	lowStock    []StockAlert
	summaryHits int
}

func (m *memoryRepo) Summary(ctx context.Context) (Summary, error) {
	m.summaryHits++
	return m.summary, nil
}

func (m *memoryRepo) TopSoldProducts(ctx context.Context, from, to time.Time) ([]ProductSales, error) {
	return m.sold[from], nil
}

func (m *memoryRepo) LowStockProducts(ctx context.Context) ([]StockAlert, error) {
	return m.lowStock, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memoryRepo{
		summary:  Summary{SalesTotal: 150, PurchasesTotal: 90, CustomerCount: 4, SupplierCount: 2},
		sold:     map[time.Time][]ProductSales{},
		lowStock: []StockAlert{{ProductID: 3, Name: "Sugar", Stock: 2}},
	}
	service := NewService(repo, NewCache(client, time.Minute))
	service.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return service, repo
}

func TestDataAggregates(t *testing.T) {
	service, repo := newTestService(t)
	repo.sold[time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)] = []ProductSales{{ProductID: 1, Name: "Coffee", Quantity: 40}}
	repo.sold[time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)] = []ProductSales{{ProductID: 1, Name: "Coffee", Quantity: 12}}
	repo.sold[time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)] = []ProductSales{{ProductID: 2, Name: "Tea", Quantity: 3}}

	data, err := service.Data(context.Background())
	require.NoError(t, err)

	require.Equal(t, 150.0, data.Summary.SalesTotal)
	require.Equal(t, 4, data.Summary.CustomerCount)
	require.Len(t, data.SoldYear, 1)
	require.Equal(t, 40, data.SoldYear[0].Quantity)
	require.Equal(t, "Tea", data.SoldDay[0].Name)
	require.Equal(t, 2, data.LowStock[0].Stock)
}

func TestDataServedFromCache(t *testing.T) {
	service, repo := newTestService(t)

	_, err := service.Data(context.Background())
	require.NoError(t, err)
	_, err = service.Data(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, repo.summaryHits)
}

func TestRefreshRebuilds(t *testing.T) {
	service, repo := newTestService(t)

	_, err := service.Data(context.Background())
	require.NoError(t, err)

	repo.summary.SalesTotal = 500
	data, err := service.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, 500.0, data.Summary.SalesTotal)
	require.Equal(t, 2, repo.summaryHits)
}

func TestDataWithoutCacheClient(t *testing.T) {
	repo := &memoryRepo{summary: Summary{SalesTotal: 10}, sold: map[time.Time][]ProductSales{}}
	service := NewService(repo, nil)
	service.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	data, err := service.Data(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10.0, data.Summary.SalesTotal)
}
