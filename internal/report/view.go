// Package report derives chartable views from the sale ledger and the catalog.
// Nothing here is persisted; every view is recomputed from the current contents.
package report

import (
	"strconv"

	"cassa/internal/core"
)

// View names.
const (
	ViewDaily       = "daily"
	ViewWeekly      = "weekly"
	ViewMonthly     = "monthly"
	ViewTopProducts = "top"
	ViewRevenue     = "revenue"
	ViewInventory   = "inventory"
)

// ViewNames lists every view in display order.
var ViewNames = []string{ViewDaily, ViewWeekly, ViewMonthly, ViewTopProducts, ViewRevenue, ViewInventory}

// Unit tells how a view's values are measured.
type Unit string

const (
	UnitCents    Unit = "cents"
	UnitQuantity Unit = "quantity"
)

// View is a fixed set of labelled buckets. Labels and Values always have the same length.
type View struct {
	Name   string
	Title  string
	Unit   Unit
	Labels []string
	Values []int64
}

func newView(name, title string, unit Unit, labels []string) View {
	return View{
		Name:   name,
		Title:  title,
		Unit:   unit,
		Labels: labels,
		Values: make([]int64, len(labels)),
	}
}

// add sums v into bucket i and reports whether i was in range.
func (v *View) add(i int, value int64) bool {
	if i < 0 || i >= len(v.Values) {
		return false
	}
	v.Values[i] += value
	return true
}

// Series returns the parallel label and value sequences a chart consumes.
// Money values are converted from cents to currency units.
func (v View) Series() ([]string, []float64) {
	labels := append([]string(nil), v.Labels...)
	values := make([]float64, len(v.Values))
	for i, x := range v.Values {
		if v.Unit == UnitCents {
			values[i] = core.NewMoney(x).Float64()
		} else {
			values[i] = float64(x)
		}
	}
	return labels, values
}

// Sum adds up every bucket.
func (v View) Sum() int64 {
	var total int64
	for _, x := range v.Values {
		total += x
	}
	return total
}

// FormatValue renders bucket i in the view's unit.
func (v View) FormatValue(i int) string {
	if v.Unit == UnitCents {
		return core.NewMoney(v.Values[i]).String()
	}
	return strconv.FormatInt(v.Values[i], 10)
}
