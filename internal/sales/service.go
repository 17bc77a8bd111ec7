package sales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andino-pos/andino-pos/internal/platform/httpx"
	"github.com/andino-pos/andino-pos/internal/shared"
)

// AuditPort records workflow mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the sale workflow.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService constructs a sale service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// Create stores a sale with its lines and initial payments. Any line whose
// quantity exceeds the product's stock rejects the whole submission; nothing
// is committed.
func (s *Service) Create(ctx context.Context, input CreateInput) (Sale, error) {
	if len(input.Items) == 0 {
		return Sale{}, fmt.Errorf("%w: at least one item is required", httpx.ErrValidation)
	}
	if len(input.Payments) == 0 {
		return Sale{}, fmt.Errorf("%w: at least one payment is required", httpx.ErrValidation)
	}
	for _, p := range input.Payments {
		if !ValidMethod(p.Method) {
			return Sale{}, fmt.Errorf("%w: unknown payment method %q", httpx.ErrValidation, p.Method)
		}
		if p.Amount <= 0 {
			return Sale{}, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
		}
	}

	var total float64
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return Sale{}, fmt.Errorf("%w: quantity must be at least 1", httpx.ErrValidation)
		}
		if item.UnitPrice < 0 {
			return Sale{}, fmt.Errorf("%w: unit price cannot be negative", httpx.ErrValidation)
		}
		total += float64(item.Quantity) * item.UnitPrice
	}

	var saleID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// Stock checks run against locked rows so a concurrent sale cannot
		// drain the same units.
		for _, item := range input.Items {
			product, err := tx.GetProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			if item.Quantity > product.Stock {
				return fmt.Errorf("%w: insufficient stock for %s (%d available)",
					httpx.ErrBusinessRule, product.Name, product.Stock)
			}
		}

		id, err := tx.InsertSale(ctx, Sale{
			CustomerID: input.CustomerID,
			UserID:     shared.UserIDFromContext(ctx),
			Date:       input.Date,
			Status:     StatusPending,
			Total:      total,
		})
		if err != nil {
			return err
		}
		saleID = id

		for _, item := range input.Items {
			if _, err := tx.InsertDetail(ctx, SaleDetail{
				SaleID:    id,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}); err != nil {
				return err
			}
			if err := tx.AddStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		var paid float64
		for _, p := range input.Payments {
			if _, err := tx.InsertPayment(ctx, SalePayment{
				SaleID:    id,
				Method:    p.Method,
				Amount:    p.Amount,
				Reference: p.Reference,
				PaidAt:    s.now(),
			}); err != nil {
				return err
			}
			paid += p.Amount
		}
		if paid >= total {
			return tx.SetSaleStatus(ctx, id, StatusPaid)
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	s.recordAudit(ctx, "create", saleID, map[string]any{"total": total, "items": len(input.Items)})
	sale, _, _, err := s.repo.GetSale(ctx, saleID)
	return sale, err
}

// UpdateHeader changes customer and date only.
func (s *Service) UpdateHeader(ctx context.Context, id int64, input HeaderInput) (Sale, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateHeader(ctx, id, input)
	})
	if err != nil {
		return Sale{}, err
	}
	s.recordAudit(ctx, "update", id, nil)
	sale, _, _, err := s.repo.GetSale(ctx, id)
	return sale, err
}

// List returns a page of sales.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Sale, shared.Pagination, error) {
	pagination := shared.NewPagination(filters.Page, 10, 0)
	items, total, err := s.repo.List(ctx, filters, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, pagination.PerPage, total), nil
}

// Show fetches a sale with its details and payments.
func (s *Service) Show(ctx context.Context, id int64) (Sale, []SaleDetail, []SalePayment, error) {
	return s.repo.GetSale(ctx, id)
}

// UpdateDetail changes one line's quantity and price. A quantity increase may
// not exceed the product's current stock; the stock moves by the delta and the
// parent total is recomputed.
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
		product, err := tx.GetProductForUpdate(ctx, detail.ProductID)
		if err != nil {
			return err
		}

		delta := input.Quantity - detail.Quantity
		if delta > product.Stock {
			return fmt.Errorf("%w: insufficient stock for %s (%d available)",
				httpx.ErrBusinessRule, product.Name, product.Stock)
		}
		if delta != 0 {
			if err := tx.AddStock(ctx, detail.ProductID, -delta); err != nil {
				return err
			}
		}
		if err := tx.UpdateDetail(ctx, detailID, input.Quantity, input.UnitPrice); err != nil {
			return err
		}

		details, err := tx.DetailsOfSale(ctx, detail.SaleID)
		if err != nil {
			return err
		}
		total := sumDetails(details)
		if err := tx.SetSaleTotal(ctx, detail.SaleID, total); err != nil {
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

// DeleteDetail removes one line and returns its quantity to stock. When the
// last line goes, the sale goes with it.
func (s *Service) DeleteDetail(ctx context.Context, detailID int64) (DeleteDetailResult, error) {
	var result DeleteDetailResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetDetail(ctx, detailID)
		if err != nil {
			return err
		}
		if err := tx.AddStock(ctx, detail.ProductID, detail.Quantity); err != nil {
			return err
		}
		if err := tx.DeleteDetail(ctx, detailID); err != nil {
			return err
		}

		remaining, err := tx.DetailsOfSale(ctx, detail.SaleID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := tx.DeletePaymentsOfSale(ctx, detail.SaleID); err != nil {
				return err
			}
			if err := tx.DeleteSale(ctx, detail.SaleID); err != nil {
				return err
			}
			result = DeleteDetailResult{DeletedSale: true}
			return nil
		}

		total := sumDetails(remaining)
		if err := tx.SetSaleTotal(ctx, detail.SaleID, total); err != nil {
			return err
		}
		result = DeleteDetailResult{Total: total}
		return nil
	})
	if err != nil {
		return DeleteDetailResult{}, err
	}
	s.recordAudit(ctx, "delete_detail", detailID, map[string]any{"deleted_sale": result.DeletedSale})
	return result, nil
}

// AddPayment records a payment. When the paid sum reaches the total, the sale
// flips to paid; it never flips back here.
func (s *Service) AddPayment(ctx context.Context, saleID int64, input PaymentInput) (PaymentResult, error) {
	if !ValidMethod(input.Method) {
		return PaymentResult{}, fmt.Errorf("%w: unknown payment method %q", httpx.ErrValidation, input.Method)
	}
	if input.Amount <= 0 {
		return PaymentResult{}, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}

	var result PaymentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == StatusCancelled {
			return fmt.Errorf("%w: cannot pay a cancelled sale", httpx.ErrBusinessRule)
		}

		payment := SalePayment{
			SaleID:    saleID,
			Method:    input.Method,
			Amount:    input.Amount,
			Reference: input.Reference,
			PaidAt:    s.now(),
		}
		id, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id

		payments, err := tx.PaymentsOfSale(ctx, saleID)
		if err != nil {
			return err
		}
		paid := sumPayments(payments)

		status := sale.Status
		if paid >= sale.Total && status != StatusPaid {
			status = StatusPaid
			if err := tx.SetSaleStatus(ctx, saleID, status); err != nil {
				return err
			}
		}
		result = PaymentResult{Payment: payment, Paid: paid, Status: status}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	s.recordAudit(ctx, "add_payment", saleID, map[string]any{"amount": input.Amount})
	return result, nil
}

// UpdatePayment edits a payment and recomputes the paid sum. Status never
// changes here: only adding a payment can flip a sale to paid.
func (s *Service) UpdatePayment(ctx context.Context, paymentID int64, input PaymentInput) (PaymentResult, error) {
	if !ValidMethod(input.Method) {
		return PaymentResult{}, fmt.Errorf("%w: unknown payment method %q", httpx.ErrValidation, input.Method)
	}
	if input.Amount <= 0 {
		return PaymentResult{}, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}

	var result PaymentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		payment, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		sale, err := tx.GetSaleForUpdate(ctx, payment.SaleID)
		if err != nil {
			return err
		}
		if err := tx.UpdatePayment(ctx, paymentID, input.Method, input.Amount, input.Reference); err != nil {
			return err
		}

		payments, err := tx.PaymentsOfSale(ctx, payment.SaleID)
		if err != nil {
			return err
		}
		payment.Method = input.Method
		payment.Amount = input.Amount
		payment.Reference = input.Reference
		result = PaymentResult{Payment: payment, Paid: sumPayments(payments), Status: sale.Status}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	s.recordAudit(ctx, "update_payment", paymentID, map[string]any{"amount": input.Amount})
	return result, nil
}

// DeletePayment removes a payment and recomputes the paid sum. The status is
// left alone even when the sum falls below the total.
func (s *Service) DeletePayment(ctx context.Context, paymentID int64) (PaymentResult, error) {
	var result PaymentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		payment, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		sale, err := tx.GetSaleForUpdate(ctx, payment.SaleID)
		if err != nil {
			return err
		}
		if err := tx.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		payments, err := tx.PaymentsOfSale(ctx, payment.SaleID)
		if err != nil {
			return err
		}
		result = PaymentResult{Payment: payment, Paid: sumPayments(payments), Status: sale.Status}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	s.recordAudit(ctx, "delete_payment", paymentID, nil)
	return result, nil
}

// UpdateStatus moves the sale through pending/paid/cancelled. Cancelling
// restores every line's quantity to stock and purges details and payments;
// the emptied header stays. Cancelled is terminal.
func (s *Service) UpdateStatus(ctx context.Context, saleID int64, status string) (Sale, error) {
	if !ValidStatus(status) {
		return Sale{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == StatusCancelled {
			return fmt.Errorf("%w: a cancelled sale cannot change status", httpx.ErrBusinessRule)
		}
		if sale.Status == status {
			return nil
		}

		if status == StatusCancelled {
			details, err := tx.DetailsOfSale(ctx, saleID)
			if err != nil {
				return err
			}
			for _, d := range details {
				if err := tx.AddStock(ctx, d.ProductID, d.Quantity); err != nil {
					return err
				}
			}
			if err := tx.DeleteDetailsOfSale(ctx, saleID); err != nil {
				return err
			}
			if err := tx.DeletePaymentsOfSale(ctx, saleID); err != nil {
				return err
			}
		}
		return tx.SetSaleStatus(ctx, saleID, status)
	})
	if err != nil {
		return Sale{}, err
	}
	s.recordAudit(ctx, "update_status", saleID, map[string]any{"status": status})
	sale, _, _, err := s.repo.GetSale(ctx, saleID)
	return sale, err
}

func sumDetails(details []SaleDetail) float64 {
	var total float64
	for _, d := range details {
		total += float64(d.Quantity) * d.UnitPrice
	}
	return total
}

func sumPayments(payments []SalePayment) float64 {
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	return paid
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "sale",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
