// Package worker exports recorded sales to a sheet in response to sale events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cassa/internal/amqp"
	"cassa/internal/core"
	"cassa/internal/sheets"
)

// SaleSource is the read side of the ledger the worker needs.
type SaleSource interface {
	Get(ctx context.Context, id string) (core.Sale, error)
	ListSales(ctx context.Context) ([]core.Sale, error)
}

// ExportWorker loads sales named by events and hands them to an exporter.
type ExportWorker struct {
	sales     SaleSource
	exporter  sheets.SaleExporter
	batchSize int
}

func NewExportWorker(sales SaleSource, exporter sheets.SaleExporter, batchSize int) *ExportWorker {
	if batchSize < 1 {
		batchSize = 50
	}
	return &ExportWorker{sales: sales, exporter: exporter, batchSize: batchSize}
}

// HandleSaleRecorded exports the sale named by msg. A sale that is not in the
// ledger is logged and acknowledged, since redelivery cannot make it appear.
func (w *ExportWorker) HandleSaleRecorded(ctx context.Context, msg *amqp.SaleRecordedMessage) error {
	sale, err := w.sales.Get(ctx, msg.SaleID)
	if errors.Is(err, core.ErrSaleNotFound) {
		slog.WarnContext(ctx, "Sale event for unknown sale, skipping", "sale_id", msg.SaleID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load sale %s: %w", msg.SaleID, err)
	}

	ref, err := w.exporter.ExportSale(ctx, sale)
	if err != nil {
		return fmt.Errorf("export sale %s: %w", msg.SaleID, err)
	}
	slog.InfoContext(ctx, "Sale exported",
		"sale_id", sale.ID, "lines", len(sale.Lines), "total_cents", sale.Total.Cents, "ref", ref)
	return nil
}

// Backfill exports the most recent sales at startup to recover events lost while
// the worker was down. Sales without an id predate events and are skipped.
func (w *ExportWorker) Backfill(ctx context.Context) (int, error) {
	sales, err := w.sales.ListSales(ctx)
	if err != nil && !core.IsWarning(err) {
		return 0, fmt.Errorf("list sales for backfill: %w", err)
	}
	if err != nil {
		slog.WarnContext(ctx, "Backfill reading degraded ledger", "error", err)
	}
	if len(sales) > w.batchSize {
		sales = sales[len(sales)-w.batchSize:]
	}

	exported, failed := 0, 0
	for _, s := range sales {
		if s.ID == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if _, err := w.exporter.ExportSale(ctx, s); err != nil {
			slog.ErrorContext(ctx, "Backfill export failed", "sale_id", s.ID, "error", err)
			failed++
			continue
		}
		exported++
	}
	slog.InfoContext(ctx, "Backfill complete", "checked", len(sales), "exported", exported, "failed", failed)
	if failed > 0 {
		return exported, fmt.Errorf("backfill: %d sales failed to export", failed)
	}
	return exported, nil
}
