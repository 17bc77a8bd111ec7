package purchases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/shared"
)

// AuditPort records workflow mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the purchase workflow.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs a purchase service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create stores a purchase with its lines. Each received line increases the
// product's stock and overwrites its purchase price and supplier.
func (s *Service) Create(ctx context.Context, input CreateInput) (Purchase, error) {
	if len(input.Items) == 0 {
		return Purchase{}, fmt.Errorf("%w: at least one item is required", httpx.ErrValidation)
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return Purchase{}, fmt.Errorf("%w: quantity must be at least 1", httpx.ErrValidation)
		}
		if item.UnitPrice < 0 {
			return Purchase{}, fmt.Errorf("%w: unit price cannot be negative", httpx.ErrValidation)
		}
	}

	var total float64
	for _, item := range input.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}

	var purchaseID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertPurchase(ctx, Purchase{
			SupplierID:    input.SupplierID,
			UserID:        shared.UserIDFromContext(ctx),
			Date:          input.Date,
			InvoiceNumber: input.InvoiceNumber,
			Notes:         input.Notes,
			Total:         total,
		})
		if err != nil {
			return err
		}
		purchaseID = id

		for _, item := range input.Items {
			if _, err := tx.GetProductForUpdate(ctx, item.ProductID); err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			if _, err := tx.InsertDetail(ctx, PurchaseDetail{
				PurchaseID: id,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
			}); err != nil {
				return err
			}
			if err := tx.AddStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := tx.SetProductPurchaseInfo(ctx, item.ProductID, item.UnitPrice, input.SupplierID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}

	s.recordAudit(ctx, "create", purchaseID, map[string]any{"total": total, "items": len(input.Items)})
	purchase, _, err := s.repo.GetPurchase(ctx, purchaseID)
	return purchase, err
}

// UpdateHeader changes header fields only.
func (s *Service) UpdateHeader(ctx context.Context, id int64, input HeaderInput) (Purchase, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateHeader(ctx, id, input)
	})
	if err != nil {
		return Purchase{}, err
	}
	s.recordAudit(ctx, "update", id, nil)
	purchase, _, err := s.repo.GetPurchase(ctx, id)
	return purchase, err
}

// List returns a page of purchases.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Purchase, shared.Pagination, error) {
	pagination := shared.NewPagination(filters.Page, 10, 0)
	items, total, err := s.repo.List(ctx, filters, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, pagination.PerPage, total), nil
}

// Show fetches a purchase with its details.
func (s *Service) Show(ctx context.Context, id int64) (Purchase, []PurchaseDetail, error) {
	return s.repo.GetPurchase(ctx, id)
}

// UpdateDetail changes one line's quantity and price. The stock moves by the
// quantity delta and the product's purchase price follows the new unit price;
// the parent total is recomputed from the lines that remain.
func (s *Service) UpdateDetail(ctx context.Context, detailID int64, input DetailInput) (DetailResult, error) {
	if input.Quantity < 1 {
		return DetailResult{}, fmt.Errorf("%w: quantity must be at least 1", httpx.ErrValidation)
	}
	if input.UnitPrice < 0 {
		return DetailResult{}, fmt.Errorf("%w: unit price cannot be negative", httpx.ErrValidation)
	}

	var result DetailResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetDetail(ctx, detailID)
		if err != nil {
			return err
		}
		if _, err := tx.GetProductForUpdate(ctx, detail.ProductID); err != nil {
			return err
		}

		delta := input.Quantity - detail.Quantity
		if delta != 0 {
			if err := tx.AddStock(ctx, detail.ProductID, delta); err != nil {
				return err
			}
		}
		if err := tx.SetProductPurchasePrice(ctx, detail.ProductID, input.UnitPrice); err != nil {
			return err
		}
		if err := tx.UpdateDetail(ctx, detailID, input.Quantity, input.UnitPrice); err != nil {
			return err
		}

		details, err := tx.DetailsOfPurchase(ctx, detail.PurchaseID)
		if err != nil {
			return err
		}
		total := sumDetails(details)
		if err := tx.SetPurchaseTotal(ctx, detail.PurchaseID, total); err != nil {
			return err
		}

		detail.Quantity = input.Quantity
		detail.UnitPrice = input.UnitPrice
		detail.Subtotal = float64(input.Quantity) * input.UnitPrice
		result = DetailResult{Detail: detail, Total: total}
		return nil
	})
	if err != nil {
		return DetailResult{}, err
	}
	s.recordAudit(ctx, "update_detail", detailID, map[string]any{"quantity": input.Quantity})
	return result, nil
}

// DeleteDetail removes one line. Stock is decreased but never below zero, the
// product's purchase price and supplier are resynced from the most recent
// remaining line anywhere, and the header is deleted when its last line goes.
func (s *Service) DeleteDetail(ctx context.Context, detailID int64) (DeleteDetailResult, error) {
	var result DeleteDetailResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetDetail(ctx, detailID)
		if err != nil {
			return err
		}
		if _, err := tx.GetProductForUpdate(ctx, detail.ProductID); err != nil {
			return err
		}

		if err := tx.AddStockClamped(ctx, detail.ProductID, -detail.Quantity); err != nil {
			return err
		}
		if err := tx.DeleteDetail(ctx, detailID); err != nil {
			return err
		}

		info, found, err := tx.LatestPurchaseInfo(ctx, detail.ProductID)
		if err != nil {
			return err
		}
		if found {
			err = tx.SetProductPurchaseInfo(ctx, detail.ProductID, info.UnitPrice, info.SupplierID)
		} else {
			err = tx.SetProductPurchaseInfo(ctx, detail.ProductID, 0, nil)
		}
		if err != nil {
			return err
		}

		remaining, err := tx.DetailsOfPurchase(ctx, detail.PurchaseID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := tx.DeletePurchase(ctx, detail.PurchaseID); err != nil {
				return err
			}
			result = DeleteDetailResult{DeletedPurchase: true}
			return nil
		}

		total := sumDetails(remaining)
		if err := tx.SetPurchaseTotal(ctx, detail.PurchaseID, total); err != nil {
			return err
		}
		result = DeleteDetailResult{Total: total}
		return nil
	})
	if err != nil {
		return DeleteDetailResult{}, err
	}
	s.recordAudit(ctx, "delete_detail", detailID, map[string]any{"deleted_purchase": result.DeletedPurchase})
	return result, nil
}

func sumDetails(details []PurchaseDetail) float64 {
	var total float64
	for _, d := range details {
		total += float64(d.Quantity) * d.UnitPrice
	}
	return total
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "purchase",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
