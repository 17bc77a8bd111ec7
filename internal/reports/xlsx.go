package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Workbook wraps a built xlsx file ready to stream.
type Workbook struct {
	file *excelize.File
}

// WriteTo streams the workbook and releases its resources.
func (w *Workbook) WriteTo(dst io.Writer) (int64, error) {
	defer w.file.Close()
	return w.file.WriteTo(dst)
}

const sheetName = "Report"

var headers = []string{"Date", "Reference", "Counterparty", "Product", "Quantity", "Unit Price", "Subtotal"}

// BuildWorkbook renders report rows into a styled xlsx sheet: bold header,
// one row per detail, a bold totals row and a merged two-line footer with the
// report title and generation timestamp.
func BuildWorkbook(title string, rows []Row, generatedAt time.Time) (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	centerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	printer := message.NewPrinter(language.English)
	widths := make([]int, len(headers))

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
		widths[col] = len(header)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", boldStyle); err != nil {
		return nil, err
	}

	var totals Totals
	for i, row := range rows {
		totals.Accumulate(row)
		values := []any{
			row.Date.Format("2006-01-02"),
			row.Reference,
			row.Counterparty,
			row.ProductName,
			row.Quantity,
			printer.Sprintf("%.2f", row.UnitPrice),
			printer.Sprintf("%.2f", row.Subtotal),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
			if width := len(fmt.Sprint(value)); width > widths[col] {
				widths[col] = width
			}
		}
	}

	totalsRow := len(rows) + 2
	totalsValues := []any{
		"Totals", "", "", "",
		totals.Quantity,
		printer.Sprintf("%.2f", totals.Price),
		printer.Sprintf("%.2f", totals.Subtotal),
	}
	for col, value := range totalsValues {
		cell, _ := excelize.CoordinatesToCellName(col+1, totalsRow)
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return nil, err
		}
		if width := len(fmt.Sprint(value)); width > widths[col] {
			widths[col] = width
		}
	}
	if err := f.SetCellStyle(sheetName,
		fmt.Sprintf("A%d", totalsRow), fmt.Sprintf("%s%d", lastCol, totalsRow), boldStyle); err != nil {
		return nil, err
	}

	// Two merged footer lines: the report title and when it was generated.
	titleRow := totalsRow + 2
	stampRow := titleRow + 1
	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", titleRow), fmt.Sprintf("%s%d", lastCol, titleRow)); err != nil {
		return nil, err
	}
	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", stampRow), fmt.Sprintf("%s%d", lastCol, stampRow)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", titleRow), title); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", stampRow),
		"Generated at "+generatedAt.Format("2006-01-02 15:04:05")); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName,
		fmt.Sprintf("A%d", titleRow), fmt.Sprintf("%s%d", lastCol, stampRow), centerStyle); err != nil {
		return nil, err
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, float64(width)+4); err != nil {
			return nil, err
		}
	}

	return &Workbook{file: f}, nil
}
