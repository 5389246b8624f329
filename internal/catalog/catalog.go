// Package catalog owns the persisted inventory: items identified by exact name,
// each with a price and the quantity on hand.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cassa/internal/core"
	"cassa/internal/kv"
)

// Store is the single writer of the inventory collection.
type Store struct {
	items *kv.Collection[core.Item]
}

// New opens the inventory collection, creating an empty one when absent.
// Failure is a *core.StorageInitError.
func New(ctx context.Context, store kv.Store) (*Store, error) {
	c, err := kv.NewCollection[core.Item](ctx, store, kv.KeyInventory)
	if err != nil {
		return nil, err
	}
	return &Store{items: c}, nil
}

// ListItems returns the inventory in stored order. A corrupt document yields an
// empty list and a *core.StorageCorruptError warning.
func (s *Store) ListItems(ctx context.Context) ([]core.Item, error) {
	return s.items.Load(ctx)
}

// Get returns the item named name.
func (s *Store) Get(ctx context.Context, name string) (core.Item, error) {
	name = core.NormalizeName(name)
	items, err := s.items.Load(ctx)
	if err != nil && !core.IsWarning(err) {
		return core.Item{}, err
	}
	if i := indexOf(items, name); i >= 0 {
		return items[i], nil
	}
	return core.Item{}, &core.ItemNotFoundError{Name: name}
}

// AddOrMergeItem appends a new item, or for an existing name adds quantity to the
// stock and replaces the price. Inputs must already be validated. A merge that
// would take the stock above core.MaxQuantity is a *core.ValidationError and
// nothing is written.
func (s *Store) AddOrMergeItem(ctx context.Context, name string, price core.Money, quantity int) (core.Item, error) {
	name = core.NormalizeName(name)
	var result core.Item
	err := s.items.Mutate(ctx, func(items []core.Item) ([]core.Item, error) {
		var err error
		items, result, err = merge(items, name, price, quantity)
		return items, err
	})
	if err != nil {
		return core.Item{}, err
	}
	slog.DebugContext(ctx, "Item stocked", "item_name", name, "quantity", result.Quantity)
	return result, nil
}

// merge adds quantity units of name at price to items. name must be normalized.
func merge(items []core.Item, name string, price core.Money, quantity int) ([]core.Item, core.Item, error) {
	i := indexOf(items, name)
	if i < 0 {
		it := core.Item{Name: name, Price: price, Quantity: quantity}
		return append(items, it), it, nil
	}
	if quantity > core.MaxQuantity-items[i].Quantity {
		return nil, core.Item{}, stockLimitError(name, items[i].Quantity)
	}
	items[i].Name = name
	items[i].Quantity += quantity
	items[i].Price = price
	return items, items[i], nil
}

func stockLimitError(name string, onHand int) error {
	return &core.ValidationError{
		Field:  "quantity",
		Reason: fmt.Sprintf("would take %q above %d in stock (has %d)", name, core.MaxQuantity, onHand),
	}
}

// AdjustQuantity adds delta (possibly negative) to the item's quantity. A missing
// item is a *core.ItemNotFoundError, a result below zero a
// *core.InsufficientStockError and a result above core.MaxQuantity a
// *core.ValidationError. Nothing is written in those cases.
func (s *Store) AdjustQuantity(ctx context.Context, name string, delta int) (core.Item, error) {
	name = core.NormalizeName(name)
	var result core.Item
	err := s.items.Mutate(ctx, func(items []core.Item) ([]core.Item, error) {
		i := indexOf(items, name)
		if i < 0 {
			return nil, &core.ItemNotFoundError{Name: name}
		}
		have := items[i].Quantity
		switch {
		case delta < 0 && -delta > have:
			return nil, &core.InsufficientStockError{Name: items[i].Name, Requested: -delta, Available: have}
		case delta > 0 && delta > core.MaxQuantity-have:
			return nil, stockLimitError(items[i].Name, have)
		}
		items[i].Quantity += delta
		result = items[i]
		return items, nil
	})
	if err != nil {
		return core.Item{}, err
	}
	return result, nil
}

// DeleteItem removes every item named name. Deleting a missing name is a no-op.
func (s *Store) DeleteItem(ctx context.Context, name string) error {
	name = core.NormalizeName(name)
	errUnchanged := errors.New("unchanged")
	err := s.items.Mutate(ctx, func(items []core.Item) ([]core.Item, error) {
		kept := items[:0]
		for _, it := range items {
			if core.NormalizeName(it.Name) != name {
				kept = append(kept, it)
			}
		}
		if len(kept) == len(items) {
			return nil, errUnchanged
		}
		return kept, nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// indexOf finds the normalized name among items. Stored names are normalized too,
// since documents written by older versions kept names as typed.
func indexOf(items []core.Item, name string) int {
	for i, it := range items {
		if core.NormalizeName(it.Name) == name {
			return i
		}
	}
	return -1
}
