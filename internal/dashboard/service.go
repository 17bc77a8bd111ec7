package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

const cacheKey = "dashboard:data"

// Service builds the dashboard payload, caching it in Redis and collapsing
// concurrent rebuilds with singleflight.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService constructs a dashboard service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Data returns the dashboard payload, served from cache when fresh.
func (s *Service) Data(ctx context.Context) (Data, error) {
	var data Data
	err := s.cache.FetchJSON(ctx, cacheKey, &data, func(ctx context.Context) (interface{}, error) {
		result, err, _ := s.singleflightBuild(ctx, cacheKey, s.build)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
	return data, err
}

// Refresh rebuilds the payload and replaces the cached copy. The warmup job
// calls this so the first request after a write never pays the build cost.
func (s *Service) Refresh(ctx context.Context) (Data, error) {
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		return Data{}, err
	}
	return s.Data(ctx)
}

func (s *Service) build(ctx context.Context) (interface{}, error) {
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := dayStart.AddDate(0, 0, 1)

	soldYear, err := s.repo.TopSoldProducts(ctx, yearStart, end)
	if err != nil {
		return nil, err
	}
	soldMonth, err := s.repo.TopSoldProducts(ctx, monthStart, end)
	if err != nil {
		return nil, err
	}
	soldDay, err := s.repo.TopSoldProducts(ctx, dayStart, end)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}

	return Data{
		Summary:   summary,
		SoldYear:  soldYear,
		SoldMonth: soldMonth,
		SoldDay:   soldDay,
		LowStock:  lowStock,
	}, nil
}

func (s *Service) singleflightBuild(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
