package report

import (
	"sort"

	"cassa/internal/core"
)

// ProductTotals sums quantity and revenue per product name over every sale line,
// in order of first appearance.
func ProductTotals(sales []core.Sale) []core.ProductTotal {
	index := map[string]int{}
	var totals []core.ProductTotal
	for _, s := range sales {
		for _, l := range s.Lines {
			i, ok := index[l.Name]
			if !ok {
				i = len(totals)
				index[l.Name] = i
				totals = append(totals, core.ProductTotal{Name: l.Name})
			}
			totals[i].Quantity += l.Quantity
			totals[i].Revenue = totals[i].Revenue.Add(l.LineTotal)
		}
	}
	return totals
}

func ranked(totals []core.ProductTotal, n int, key func(core.ProductTotal) int64) []core.ProductTotal {
	sorted := append([]core.ProductTotal(nil), totals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := key(sorted[i]), key(sorted[j])
		if ki != kj {
			return ki > kj
		}
		return sorted[i].Name < sorted[j].Name
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopProducts ranks products by units sold. n <= 0 keeps every product.
func (a *Aggregator) TopProducts(sales []core.Sale, n int) View {
	top := ranked(ProductTotals(sales), n, func(p core.ProductTotal) int64 { return int64(p.Quantity) })
	v := newView(ViewTopProducts, "Top selling products", UnitQuantity, make([]string, len(top)))
	for i, p := range top {
		v.Labels[i] = p.Name
		v.Values[i] = int64(p.Quantity)
	}
	return v
}

// Revenue ranks products by revenue. n <= 0 keeps every product.
func (a *Aggregator) Revenue(sales []core.Sale, n int) View {
	top := ranked(ProductTotals(sales), n, func(p core.ProductTotal) int64 { return p.Revenue.Cents })
	v := newView(ViewRevenue, "Revenue by product", UnitCents, make([]string, len(top)))
	for i, p := range top {
		v.Labels[i] = p.Name
		v.Values[i] = p.Revenue.Cents
	}
	return v
}

// Inventory shows the stock on hand per item in catalog order.
func (a *Aggregator) Inventory(items []core.Item) View {
	v := newView(ViewInventory, "Stock on hand", UnitQuantity, make([]string, len(items)))
	for i, it := range items {
		v.Labels[i] = it.Name
		v.Values[i] = int64(it.Quantity)
	}
	return v
}
