// Package purchases implements the purchase workflow: header plus line items
// that drive product stock and pricing.
package purchases

import "time"

// Purchase is a purchase header. Total always equals the sum of its current
// detail subtotals.
type Purchase struct {
	ID            int64     `json:"id"`
	SupplierID    *int64    `json:"supplier_id,omitempty"`
	SupplierName  string    `json:"supplier_name,omitempty"`
	UserID        int64     `json:"user_id"`
	UserName      string    `json:"user_name,omitempty"`
	Date          time.Time `json:"date"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Total         float64   `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PurchaseDetail is one received line item.
type PurchaseDetail struct {
	ID          int64   `json:"id"`
	PurchaseID  int64   `json:"purchase_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// ProductState is the slice of a product row the workflow reconciles against.
type ProductState struct {
	ID            int64
	Stock         int
	PurchasePrice float64
	SupplierID    *int64
}

// PurchaseInfo is the pricing source recovered from the most recent remaining
// detail when a line is removed.
type PurchaseInfo struct {
	UnitPrice  float64
	SupplierID *int64
}
