// Package ledger is the append-only record of completed sales.
package ledger

import (
	"context"
	"log/slog"

	"cassa/internal/core"
	"cassa/internal/kv"
)

// Ledger is the single writer of the sales collection. Recorded sales are never
// modified or removed.
type Ledger struct {
	sales *kv.Collection[core.Sale]
}

// New opens the sales collection, creating an empty one when absent.
func New(ctx context.Context, store kv.Store) (*Ledger, error) {
	c, err := kv.NewCollection[core.Sale](ctx, store, kv.KeySales)
	if err != nil {
		return nil, err
	}
	return &Ledger{sales: c}, nil
}

// ListSales returns every sale in recording order. A corrupt document yields an
// empty list and a *core.StorageCorruptError warning.
func (l *Ledger) ListSales(ctx context.Context) ([]core.Sale, error) {
	return l.sales.Load(ctx)
}

// RecordSale appends sale to the ledger.
func (l *Ledger) RecordSale(ctx context.Context, sale core.Sale) error {
	err := l.sales.Mutate(ctx, func(sales []core.Sale) ([]core.Sale, error) {
		return append(sales, sale), nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Sale recorded",
		"sale_id", sale.ID, "lines", len(sale.Lines), "total_cents", sale.Total.Cents)
	return nil
}

// Get returns the sale with the given id. Sales recorded without an id cannot be
// looked up.
func (l *Ledger) Get(ctx context.Context, id string) (core.Sale, error) {
	if id == "" {
		return core.Sale{}, core.ErrSaleNotFound
	}
	sales, err := l.sales.Load(ctx)
	if err != nil && !core.IsWarning(err) {
		return core.Sale{}, err
	}
	for i := len(sales) - 1; i >= 0; i-- {
		if sales[i].ID == id {
			return sales[i], nil
		}
	}
	return core.Sale{}, core.ErrSaleNotFound
}
