package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbookLayout(t *testing.T) {
	rows := []Row{
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Reference: "S-1", Counterparty: "Acme", ProductName: "Coffee", Quantity: 2, UnitPrice: 5.5, Subtotal: 11},
		{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Reference: "S-2", Counterparty: "Globex", ProductName: "Tea", Quantity: 3, UnitPrice: 4, Subtotal: 12},
	}
	generated := time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC)

	workbook, err := BuildWorkbook("Sales Report", rows, generated)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = workbook.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	require.Equal(t, "Date", header)

	reference, err := f.GetCellValue("Report", "B3")
	require.NoError(t, err)
	require.Equal(t, "S-2", reference)

	// Totals row sits right under the data.
	label, err := f.GetCellValue("Report", "A4")
	require.NoError(t, err)
	require.Equal(t, "Totals", label)

	quantity, err := f.GetCellValue("Report", "E4")
	require.NoError(t, err)
	require.Equal(t, "5", quantity)

	subtotal, err := f.GetCellValue("Report", "G4")
	require.NoError(t, err)
	require.Equal(t, "23.00", subtotal)

	title, err := f.GetCellValue("Report", "A6")
	require.NoError(t, err)
	require.Equal(t, "Sales Report", title)

	stamp, err := f.GetCellValue("Report", "A7")
	require.NoError(t, err)
	require.Equal(t, "Generated at 2025-03-05 10:30:00", stamp)
}

func TestBuildWorkbookEmpty(t *testing.T) {
	workbook, err := BuildWorkbook("Purchases Report", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = workbook.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	label, err := f.GetCellValue("Report", "A2")
	require.NoError(t, err)
	require.Equal(t, "Totals", label)

	quantity, err := f.GetCellValue("Report", "E2")
	require.NoError(t, err)
	require.Equal(t, "0", quantity)
}

func TestTotalsAccumulate(t *testing.T) {
	var totals Totals
	totals.Accumulate(Row{Quantity: 2, UnitPrice: 5.5, Subtotal: 11})
	totals.Accumulate(Row{Quantity: 3, UnitPrice: 4, Subtotal: 12})

	require.Equal(t, 5, totals.Quantity)
	require.InDelta(t, 9.5, totals.Price, 0.001)
	require.InDelta(t, 23, totals.Subtotal, 0.001)
}
