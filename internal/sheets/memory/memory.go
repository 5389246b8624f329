// Package memory is an in-process sale exporter for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cassa/internal/core"
	"cassa/internal/sheets"
)

// Exporter keeps exported rows in memory.
type Exporter struct {
	mu   sync.Mutex
	loc  *time.Location
	rows [][]any
}

var _ sheets.SaleExporter = (*Exporter)(nil)

func New(loc *time.Location) *Exporter {
	return &Exporter{loc: loc, rows: [][]any{sheets.Header}}
}

// ExportSale appends the sale's rows unless they are already present.
func (e *Exporter) ExportSale(_ context.Context, sale core.Sale) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sheets.ContainsSale(e.rows, sale.ID) {
		return fmt.Sprintf("mem:%s", sale.ID), nil
	}
	first := len(e.rows) + 1
	e.rows = append(e.rows, sheets.Rows(sale, e.loc)...)
	return fmt.Sprintf("mem:%d-%d", first, len(e.rows)), nil
}

// Rows returns a copy of every row, header included.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	for i, r := range e.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
