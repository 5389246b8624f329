package services

import (
	"context"
	"io"

	"cassa/internal/core"
)

// CatalogStore is the subset of catalog.Store the services depend on.
type CatalogStore interface {
	ListItems(ctx context.Context) ([]core.Item, error)
	Get(ctx context.Context, name string) (core.Item, error)
	AddOrMergeItem(ctx context.Context, name string, price core.Money, quantity int) (core.Item, error)
	AdjustQuantity(ctx context.Context, name string, delta int) (core.Item, error)
	DeleteItem(ctx context.Context, name string) error
	ImportYAML(ctx context.Context, r io.Reader) (int, error)
}

// SaleRecorder appends completed sales to the ledger.
type SaleRecorder interface {
	RecordSale(ctx context.Context, sale core.Sale) error
}

// SalePublisher announces a recorded sale to downstream consumers.
type SalePublisher interface {
	PublishSaleRecorded(ctx context.Context, sale core.Sale) error
}
