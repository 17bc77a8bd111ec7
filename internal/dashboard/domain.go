// Package dashboard aggregates the landing page numbers: totals, top sold
// products for the current year, month and day, and the low stock watch list.
package dashboard

// Summary carries the headline counters.
type Summary struct {
	SalesTotal     float64 `json:"sales_total"`
	PurchasesTotal float64 `json:"purchases_total"`
	CustomerCount  int     `json:"customer_count"`
	SupplierCount  int     `json:"supplier_count"`
}

// ProductSales is one product's sold quantity within a period.
type ProductSales struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// StockAlert is a product at or below the low stock threshold.
type StockAlert struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// Data is the full dashboard payload.
type Data struct {
	Summary   Summary        `json:"summary"`
	SoldYear  []ProductSales `json:"sold_year"`
	SoldMonth []ProductSales `json:"sold_month"`
	SoldDay   []ProductSales `json:"sold_day"`
	LowStock  []StockAlert   `json:"low_stock"`
}
