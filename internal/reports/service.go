package reports

import (
	"context"
	"time"

	"github.com/andino-pos/andino-pos/internal/shared"
)

// Service assembles report pages and exports.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a report service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Page returns one page of the report with running totals over the page rows.
func (s *Service) Page(ctx context.Context, kind Kind, filters Filters) ([]Row, Totals, shared.Pagination, error) {
	pagination := shared.NewPagination(filters.Page, 10, 0)
	rows, total, err := s.repo.Rows(ctx, kind, filters, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, Totals{}, shared.Pagination{}, err
	}
	var totals Totals
	for _, row := range rows {
		totals.Accumulate(row)
	}
	return rows, totals, shared.NewPagination(filters.Page, pagination.PerPage, total), nil
}

// Export builds the full xlsx workbook for the matching rows.
func (s *Service) Export(ctx context.Context, kind Kind, filters Filters) (*Workbook, error) {
	rows, err := s.repo.AllRows(ctx, kind, filters)
	if err != nil {
		return nil, err
	}
	title := "Sales Report"
	if kind == KindPurchases {
		title = "Purchases Report"
	}
	return BuildWorkbook(title, rows, s.now())
}
