// Package sheets exports recorded sales to a spreadsheet, one row per sale line.
package sheets

import (
	"context"
	"strings"
	"time"

	"cassa/internal/core"
)

// SaleExporter writes a sale to an external sheet. Exporting the same sale twice
// must not duplicate its rows.
type SaleExporter interface {
	ExportSale(ctx context.Context, sale core.Sale) (rowRef string, err error)
}

// Header is the first row of an export sheet.
var Header = []any{"Timestamp", "Sale ID", "Item", "Quantity", "Unit price", "Line total", "Sale total"}

// SaleIDColumn is the zero-based column holding the sale id.
const SaleIDColumn = 1

// Rows converts sale into one row per line. Money is written as plain decimals so
// the sheet can sum it; the timestamp is shown in loc. Item names go through
// TextCell.
func Rows(sale core.Sale, loc *time.Location) [][]any {
	if loc == nil {
		loc = time.UTC
	}
	ts := sale.Timestamp.In(loc).Format("2006-01-02 15:04:05")
	rows := make([][]any, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		rows = append(rows, []any{
			ts,
			sale.ID,
			TextCell(l.Name),
			l.Quantity,
			l.UnitPrice.Decimal().StringFixed(2),
			l.LineTotal.Decimal().StringFixed(2),
			sale.Total.Decimal().StringFixed(2),
		})
	}
	return rows
}

// TextCell keeps s literal in a sheet that parses user input. A leading quote
// stops text starting with = + - @ from being read as a formula.
func TextCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@'", rune(s[0])) {
		return "'" + s
	}
	return s
}

// ContainsSale reports whether any row carries saleID in the sale id column.
func ContainsSale(rows [][]any, saleID string) bool {
	for _, r := range rows {
		if len(r) > SaleIDColumn && r[SaleIDColumn] == saleID {
			return true
		}
	}
	return false
}
