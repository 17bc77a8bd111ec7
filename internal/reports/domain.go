// Package reports implements date-filtered sale and purchase reports with
// xlsx export.
package reports

import "time"

// Kind selects which workflow a report covers.
type Kind string

const (
	KindSales     Kind = "sales"
	KindPurchases Kind = "purchases"
)

// Row is one detail line projected for reporting. The paginated page and the
// export both read this projection so their sums always agree.
type Row struct {
	Date         time.Time `json:"date"`
	Reference    string    `json:"reference"`
	Counterparty string    `json:"counterparty"`
	ProductName  string    `json:"product_name"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Subtotal     float64   `json:"subtotal"`
}

// Totals accumulates the footer sums of a report.
type Totals struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

// Accumulate folds a row into the totals.
func (t *Totals) Accumulate(r Row) {
	t.Quantity += r.Quantity
	t.Price += r.UnitPrice
	t.Subtotal += r.Subtotal
}

// Filters narrows a report by inclusive date range.
type Filters struct {
	From *time.Time
	To   *time.Time
	Page int
}
