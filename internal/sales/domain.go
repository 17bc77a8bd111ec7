// Package sales implements the sale workflow: header, line items, payments
// and the pending/paid/cancelled state machine.
package sales

import "time"

// Sale statuses. Pending moves to paid only when payments cover the total;
// cancelled is terminal.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known sale status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

// Payment methods accepted at the counter.
const (
	MethodCash     = "cash"
	MethodQR       = "qr"
	MethodTransfer = "transfer"
	MethodOther    = "other"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m string) bool {
	return m == MethodCash || m == MethodQR || m == MethodTransfer || m == MethodOther
}

// Sale is a sale header. Total always equals the sum of its current detail
// subtotals; Paid is derived from payments.
type Sale struct {
	ID           int64     `json:"id"`
	CustomerID   *int64    `json:"customer_id,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	Total        float64   `json:"total"`
	Paid         float64   `json:"paid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SaleDetail is one sold line item.
type SaleDetail struct {
	ID          int64   `json:"id"`
	SaleID      int64   `json:"sale_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// SalePayment is one payment against a sale.
type SalePayment struct {
	ID        int64     `json:"id"`
	SaleID    int64     `json:"sale_id"`
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

// ProductState is the slice of a product row the workflow checks stock
// against.
type ProductState struct {
	ID    int64
	Name  string
	Stock int
}
