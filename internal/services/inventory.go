package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cassa/internal/core"
	"cassa/internal/log"
)

// Inventory validates catalog changes before they reach the store and keeps the
// report cache in step with them.
type Inventory struct {
	catalog CatalogStore
	reports *Reports
}

func NewInventory(catalog CatalogStore, reports *Reports) *Inventory {
	return &Inventory{catalog: catalog, reports: reports}
}

// AddItem stocks quantity units of name at price, merging into an existing item.
func (s *Inventory) AddItem(ctx context.Context, name string, price core.Money, quantity int) (core.Item, error) {
	name = core.NormalizeName(name)
	if err := core.ValidateItemInput(name, price, quantity); err != nil {
		return core.Item{}, err
	}
	item, err := s.catalog.AddOrMergeItem(ctx, name, price, quantity)
	if err != nil {
		return core.Item{}, fmt.Errorf("add item: %w", err)
	}
	s.invalidate()
	slog.InfoContext(ctx, "Item added",
		log.FieldItemName, item.Name,
		log.FieldQuantity, item.Quantity,
		log.FieldPriceCents, item.Price.Cents)
	return item, nil
}

// AddItemText parses user-entered price and quantity, then adds the item.
func (s *Inventory) AddItemText(ctx context.Context, name, price, quantity string) (core.Item, error) {
	p, err := core.ParsePrice(price)
	if err != nil {
		return core.Item{}, &core.ValidationError{
			Field:  "price",
			Reason: "must be a positive amount up to " + core.NewMoney(core.MaxPriceCents).String(),
		}
	}
	q, err := core.ParseQuantity(quantity)
	if err != nil {
		return core.Item{}, err
	}
	return s.AddItem(ctx, name, p, q)
}

func (s *Inventory) DeleteItem(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return &core.ValidationError{Field: "name", Reason: "is required"}
	}
	if err := s.catalog.DeleteItem(ctx, name); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.invalidate()
	slog.InfoContext(ctx, "Item deleted", log.FieldItemName, core.NormalizeName(name))
	return nil
}

// ListItems returns the catalog. A corrupt catalog yields an empty list and a
// warning error the caller should surface.
func (s *Inventory) ListItems(ctx context.Context) ([]core.Item, error) {
	return s.catalog.ListItems(ctx)
}

// Import seeds the catalog from a YAML document.
func (s *Inventory) Import(ctx context.Context, r io.Reader) (int, error) {
	n, err := s.catalog.ImportYAML(ctx, r)
	if n > 0 {
		s.invalidate()
	}
	if err != nil {
		return n, fmt.Errorf("import items: %w", err)
	}
	slog.InfoContext(ctx, "Items imported", "count", n)
	return n, nil
}

func (s *Inventory) invalidate() {
	if s.reports != nil {
		s.reports.Invalidate()
	}
}
