package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/andino-pos/andino-pos/internal/masterdata/shared"
	"github.com/andino-pos/andino-pos/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, httpx.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if err := validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) (Product, error) {
	if id <= 0 {
		return Product{}, httpx.ErrNotFound
	}
	product.Name = strings.TrimSpace(product.Name)
	if err := validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, product)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return httpx.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Stock never goes negative and prices never below zero; purchases and sales
// rely on these holding at the catalog boundary too.
func validate(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", httpx.ErrValidation)
	}
	if p.PurchasePrice < 0 || p.SalePrice < 0 {
		return fmt.Errorf("%w: prices cannot be negative", httpx.ErrValidation)
	}
	return nil
}
