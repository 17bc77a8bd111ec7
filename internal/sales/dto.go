package sales

import "time"

// CreateInput describes a sale submission with its initial payments.
type CreateInput struct {
	CustomerID *int64         `json:"customer_id" validate:"omitempty,gt=0"`
	Date       time.Time      `json:"date" validate:"required"`
	Items      []ItemInput    `json:"items" validate:"required,min=1,dive"`
	Payments   []PaymentInput `json:"payments" validate:"required,min=1,dive"`
}

// ItemInput is one submitted line.
type ItemInput struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// PaymentInput is one submitted payment.
type PaymentInput struct {
	Method    string  `json:"method" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Reference string  `json:"reference" validate:"max=100"`
}

// HeaderInput updates header fields only.
type HeaderInput struct {
	CustomerID *int64    `json:"customer_id" validate:"omitempty,gt=0"`
	Date       time.Time `json:"date" validate:"required"`
}

// DetailInput updates one line item.
type DetailInput struct {
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// StatusInput changes the sale status.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// DetailResult is returned by the detail update endpoint.
type DetailResult struct {
	Detail SaleDetail `json:"detail"`
	Total  float64    `json:"total"`
}

// DeleteDetailResult is returned by the detail delete endpoint.
type DeleteDetailResult struct {
	DeletedSale bool    `json:"deleted_sale"`
	Total       float64 `json:"total"`
}

// PaymentResult is returned by the payment endpoints.
type PaymentResult struct {
	Payment SalePayment `json:"payment"`
	Paid    float64     `json:"paid"`
	Status  string      `json:"status"`
}

// ListFilters narrows the sale listing.
type ListFilters struct {
	Page   int
	Search string
	Status string
	From   *time.Time
	To     *time.Time
}
