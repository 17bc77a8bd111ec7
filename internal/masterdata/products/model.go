// Package products implements the product catalog with stock tracking.
package products

import "time"

// Product represents a catalog item. Category and supplier are optional and
// surfaced with their joined names on listings.
type Product struct {
	ID            int64     `json:"id"`
	CategoryID    *int64    `json:"category_id,omitempty"`
	SupplierID    *int64    `json:"supplier_id,omitempty"`
	CategoryName  string    `json:"category_name,omitempty"`
	SupplierName  string    `json:"supplier_name,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Stock         int       `json:"stock"`
	PurchasePrice float64   `json:"purchase_price"`
	SalePrice     float64   `json:"sale_price"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
