package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"cassa/internal/core"
)

// SalesSource is the read side of the sale ledger.
type SalesSource interface {
	ListSales(ctx context.Context) ([]core.Sale, error)
}

// ItemsSource is the read side of the catalog.
type ItemsSource interface {
	ListItems(ctx context.Context) ([]core.Item, error)
}

// DefaultTopN bounds the product rankings of a snapshot.
const DefaultTopN = 10

// Aggregator computes report views. It keeps no state between calls.
type Aggregator struct {
	sales SalesSource
	items ItemsSource
	loc   *time.Location
	now   func() time.Time
	topN  int
}

type Option func(*Aggregator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithTopN(n int) Option {
	return func(a *Aggregator) { a.topN = n }
}

// NewAggregator buckets sales in loc; a nil loc means time.Local.
func NewAggregator(sales SalesSource, items ItemsSource, loc *time.Location, opts ...Option) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	a := &Aggregator{sales: sales, items: items, loc: loc, now: time.Now, topN: DefaultTopN}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Aggregator) Location() *time.Location { return a.loc }

// Snapshot is every view computed from one read of the ledger and the catalog.
type Snapshot struct {
	GeneratedAt time.Time
	Daily       View
	Weekly      View
	Monthly     View
	TopProducts View
	Revenue     View
	Inventory   View
	// Warnings carries degraded reads, such as a corrupt collection read as empty.
	Warnings []string
}

// Views returns the snapshot's views in ViewNames order.
func (s Snapshot) Views() []View {
	return []View{s.Daily, s.Weekly, s.Monthly, s.TopProducts, s.Revenue, s.Inventory}
}

// View looks a view up by name.
func (s Snapshot) View(name string) (View, bool) {
	for _, v := range s.Views() {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// Snapshot reads both collections concurrently and then computes every view from
// that one read.
// Corrupt collections become warnings; any other read failure is returned.
func (a *Aggregator) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		sales               []core.Sale
		items               []core.Item
		salesWarn, itemWarn error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = a.sales.ListSales(gctx)
		if core.IsWarning(err) {
			salesWarn, err = err, nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		items, err = a.items.ListItems(gctx)
		if core.IsWarning(err) {
			itemWarn, err = err, nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	now := a.now().In(a.loc)
	snap := Snapshot{GeneratedAt: now}
	for _, w := range []error{salesWarn, itemWarn} {
		if w != nil {
			snap.Warnings = append(snap.Warnings, w.Error())
		}
	}

	snap.Daily = a.Daily(sales, now)
	snap.Weekly = a.Weekly(sales, now)
	snap.Monthly = a.Monthly(sales, now)
	snap.TopProducts = a.TopProducts(sales, a.topN)
	snap.Revenue = a.Revenue(sales, a.topN)
	snap.Inventory = a.Inventory(items)

	return snap, nil
}
