package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassa/internal/core"
)

// Wednesday, 13 March 2024.
var testNow = time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

func saleAt(t time.Time, cents int64) core.Sale {
	return core.Sale{Total: core.NewMoney(cents), Timestamp: t}
}

func fixtureSales() []core.Sale {
	return []core.Sale{
		saleAt(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 1000),
		saleAt(time.Date(2024, 3, 13, 14, 59, 0, 0, time.UTC), 2997),
		saleAt(time.Date(2024, 3, 12, 23, 59, 59, 0, time.UTC), 500),
		saleAt(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 250),
		saleAt(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC), 100),
		saleAt(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 50),
		saleAt(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), 7),
	}
}

func TestDaily(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	v := a.Daily(fixtureSales(), testNow)

	require.Len(t, v.Labels, 24)
	require.Len(t, v.Values, 24)
	assert.Equal(t, "0:00", v.Labels[0])
	assert.Equal(t, "23:00", v.Labels[23])
	assert.Equal(t, int64(1000), v.Values[0])
	assert.Equal(t, int64(2997), v.Values[14])
	assert.Equal(t, int64(3997), v.Sum())
}

func TestWeekly(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	v := a.Weekly(fixtureSales(), testNow)

	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, v.Labels)
	assert.Equal(t, []int64{250, 0, 500, 3997, 0, 0, 0}, v.Values)
}

func TestWeeklyOnSunday(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	sunday := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	v := a.Weekly(fixtureSales(), sunday)

	// Everything from Sunday midnight on counts, including later "future" sales.
	assert.Equal(t, int64(250+500+1000+2997), v.Sum())
	assert.Equal(t, int64(250), v.Values[0])
}

func TestMonthly(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	v := a.Monthly(fixtureSales(), testNow)

	require.Len(t, v.Labels, 31)
	assert.Equal(t, "1", v.Labels[0])
	assert.Equal(t, "31", v.Labels[30])
	assert.Equal(t, int64(50), v.Values[0])
	assert.Equal(t, int64(100), v.Values[8])
	assert.Equal(t, int64(250), v.Values[9])
	assert.Equal(t, int64(500), v.Values[11])
	assert.Equal(t, int64(3997), v.Values[12])
	assert.Equal(t, int64(4897), v.Sum())
}

func TestMonthlyBucketCountFollowsMonth(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	assert.Len(t, a.Monthly(nil, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)).Values, 29)
	assert.Len(t, a.Monthly(nil, time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)).Values, 28)
	assert.Len(t, a.Monthly(nil, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)).Values, 30)
}

func TestMonthlyDropsOutOfRangeDay(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	now := time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)
	sales := []core.Sale{
		saleAt(time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC), 100),
		// A skewed clock can record a sale on a day this month does not have.
		saleAt(time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC), 999),
	}

	v := a.Monthly(sales, now)
	require.Len(t, v.Values, 30)
	assert.Equal(t, int64(100), v.Values[29])
	assert.Equal(t, int64(100), v.Sum())
}

func TestBucketsUseLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	a := NewAggregator(nil, nil, loc)

	// 23:30 UTC on the 12th is 01:30 on the 13th in UTC+2.
	sales := []core.Sale{saleAt(time.Date(2024, 3, 12, 23, 30, 0, 0, time.UTC), 700)}
	v := a.Daily(sales, testNow)
	assert.Equal(t, int64(700), v.Values[1])

	utc := NewAggregator(nil, nil, time.UTC).Daily(sales, testNow)
	assert.Zero(t, utc.Sum())
}

func TestBucketSumsCountEachSaleOnce(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	var sales []core.Sale
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var wantMonth, wantWeek, wantDay int64
	for i := 0; i < 13*24*4; i++ {
		ts := start.Add(time.Duration(i) * 15 * time.Minute)
		cents := int64(i%17 + 1)
		sales = append(sales, saleAt(ts, cents))
		wantMonth += cents
		if !ts.Before(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
			wantWeek += cents
		}
		if !ts.Before(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)) {
			wantDay += cents
		}
	}

	assert.Equal(t, wantDay, a.Daily(sales, testNow).Sum())
	assert.Equal(t, wantWeek, a.Weekly(sales, testNow).Sum())
	assert.Equal(t, wantMonth, a.Monthly(sales, testNow).Sum())
}

func TestSeries(t *testing.T) {
	v := View{Unit: UnitCents, Labels: []string{"a", "b"}, Values: []int64{2997, 5}}
	labels, values := v.Series()
	assert.Equal(t, []string{"a", "b"}, labels)
	assert.InDelta(t, 29.97, values[0], 1e-9)
	assert.InDelta(t, 0.05, values[1], 1e-9)

	q := View{Unit: UnitQuantity, Labels: []string{"x"}, Values: []int64{4}}
	_, values = q.Series()
	assert.Equal(t, []float64{4}, values)
}

func productSales() []core.Sale {
	widget := core.Item{Name: "Widget", Price: core.NewMoney(999)}
	pen := core.Item{Name: "Pen", Price: core.NewMoney(150)}
	mug := core.Item{Name: "Mug", Price: core.NewMoney(1200)}
	return []core.Sale{
		core.NewSale([]core.CartLine{core.NewCartLine(widget, 3), core.NewCartLine(pen, 4)}, testNow),
		core.NewSale([]core.CartLine{core.NewCartLine(pen, 6), core.NewCartLine(mug, 1)}, testNow),
	}
}

func TestProductTotals(t *testing.T) {
	totals := ProductTotals(productSales())
	require.Len(t, totals, 3)
	assert.Equal(t, core.ProductTotal{Name: "Widget", Quantity: 3, Revenue: core.NewMoney(2997)}, totals[0])
	assert.Equal(t, core.ProductTotal{Name: "Pen", Quantity: 10, Revenue: core.NewMoney(1500)}, totals[1])
	assert.Equal(t, core.ProductTotal{Name: "Mug", Quantity: 1, Revenue: core.NewMoney(1200)}, totals[2])
}

func TestTopProductsAndRevenue(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)

	top := a.TopProducts(productSales(), 2)
	assert.Equal(t, []string{"Pen", "Widget"}, top.Labels)
	assert.Equal(t, []int64{10, 3}, top.Values)
	assert.Equal(t, UnitQuantity, top.Unit)

	rev := a.Revenue(productSales(), 0)
	assert.Equal(t, []string{"Widget", "Pen", "Mug"}, rev.Labels)
	assert.Equal(t, []int64{2997, 1500, 1200}, rev.Values)
}

func TestInventoryView(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	v := a.Inventory([]core.Item{{Name: "Widget", Quantity: 12}, {Name: "Pen", Quantity: 0}})
	assert.Equal(t, []string{"Widget", "Pen"}, v.Labels)
	assert.Equal(t, []int64{12, 0}, v.Values)
}

type fakeSales struct {
	sales []core.Sale
	err   error
}

func (f fakeSales) ListSales(context.Context) ([]core.Sale, error) { return f.sales, f.err }

type fakeItems struct {
	items []core.Item
	err   error
}

func (f fakeItems) ListItems(context.Context) ([]core.Item, error) { return f.items, f.err }

func TestSnapshot(t *testing.T) {
	a := NewAggregator(
		fakeSales{sales: fixtureSales()},
		fakeItems{items: []core.Item{{Name: "Widget", Quantity: 3}}},
		time.UTC,
		WithClock(func() time.Time { return testNow }),
	)

	snap, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.GeneratedAt.Equal(testNow))
	assert.Equal(t, int64(3997), snap.Daily.Sum())
	assert.Equal(t, int64(4747), snap.Weekly.Sum())
	assert.Equal(t, int64(4897), snap.Monthly.Sum())
	assert.Equal(t, []string{"Widget"}, snap.Inventory.Labels)
	assert.Empty(t, snap.Warnings)

	var names []string
	for _, v := range snap.Views() {
		names = append(names, v.Name)
	}
	assert.Equal(t, ViewNames, names)

	v, ok := snap.View(ViewWeekly)
	require.True(t, ok)
	assert.Len(t, v.Values, 7)
	_, ok = snap.View("yearly")
	assert.False(t, ok)
}

func TestSnapshotCorruptLedgerIsWarning(t *testing.T) {
	a := NewAggregator(
		fakeSales{sales: []core.Sale{}, err: &core.StorageCorruptError{Key: "sales", Err: errors.New("bad json")}},
		fakeItems{},
		time.UTC,
		WithClock(func() time.Time { return testNow }),
	)

	snap, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "sales")
	assert.Zero(t, snap.Daily.Sum())
}

func TestSnapshotReadFailure(t *testing.T) {
	boom := errors.New("disk gone")
	a := NewAggregator(fakeSales{}, fakeItems{err: boom}, time.UTC)

	_, err := a.Snapshot(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestWriteTextGolden(t *testing.T) {
	a := NewAggregator(nil, nil, time.UTC)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, a.Weekly(fixtureSales(), testNow)))
	g.Assert(t, "weekly", buf.Bytes())

	buf.Reset()
	require.NoError(t, WriteText(&buf, a.TopProducts(productSales(), 0)))
	g.Assert(t, "top_products", buf.Bytes())

	buf.Reset()
	require.NoError(t, WriteText(&buf, a.Inventory(nil)))
	g.Assert(t, "inventory_empty", buf.Bytes())
}
