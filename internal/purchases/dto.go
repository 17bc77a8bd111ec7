package purchases

import "time"

// CreateInput describes a purchase submission.
type CreateInput struct {
	SupplierID    *int64      `json:"supplier_id" validate:"omitempty,gt=0"`
	Date          time.Time   `json:"date" validate:"required"`
	InvoiceNumber string      `json:"invoice_number" validate:"max=50"`
	Notes         string      `json:"notes" validate:"max=500"`
	Items         []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// ItemInput is one submitted line.
type ItemInput struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// HeaderInput updates header fields only; line items have their own endpoints.
type HeaderInput struct {
	SupplierID    *int64    `json:"supplier_id" validate:"omitempty,gt=0"`
	Date          time.Time `json:"date" validate:"required"`
	InvoiceNumber string    `json:"invoice_number" validate:"max=50"`
	Notes         string    `json:"notes" validate:"max=500"`
}

// DetailInput updates one line item.
type DetailInput struct {
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// DetailResult is returned by the detail update endpoint.
type DetailResult struct {
	Detail PurchaseDetail `json:"detail"`
	Total  float64        `json:"total"`
}

// DeleteDetailResult is returned by the detail delete endpoint.
type DeleteDetailResult struct {
	DeletedPurchase bool    `json:"deleted_purchase"`
	Total           float64 `json:"total"`
}

// ListFilters narrows the purchase listing.
type ListFilters struct {
	Page   int
	Search string
	From   *time.Time
	To     *time.Time
}
