package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassa/internal/amqp"
	"cassa/internal/core"
	"cassa/internal/kv/memory"
	"cassa/internal/ledger"
	sheetsmem "cassa/internal/sheets/memory"
)

func recordSales(t *testing.T, l *ledger.Ledger, n int) []core.Sale {
	t.Helper()
	var out []core.Sale
	for i := 0; i < n; i++ {
		s := core.NewSale([]core.CartLine{
			core.NewCartLine(core.Item{Name: "Widget", Price: core.NewMoney(999)}, i+1),
		}, time.Date(2024, 3, 13, 10, i, 0, 0, time.UTC))
		require.NoError(t, l.RecordSale(context.Background(), s))
		out = append(out, s)
	}
	return out
}

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(context.Background(), memory.New())
	require.NoError(t, err)
	return l
}

func TestHandleSaleRecorded(t *testing.T) {
	l := newLedger(t)
	sales := recordSales(t, l, 2)
	exp := sheetsmem.New(time.UTC)
	w := NewExportWorker(l, exp, 10)

	err := w.HandleSaleRecorded(context.Background(), amqp.NewSaleRecordedMessage(sales[1]))
	require.NoError(t, err)

	rows := exp.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, sales[1].ID, rows[1][1])
	assert.Equal(t, 2, rows[1][3])
}

func TestHandleSaleRecordedUnknownSale(t *testing.T) {
	exp := sheetsmem.New(time.UTC)
	w := NewExportWorker(newLedger(t), exp, 10)

	err := w.HandleSaleRecorded(context.Background(), &amqp.SaleRecordedMessage{SaleID: "missing"})
	require.NoError(t, err)
	assert.Len(t, exp.Rows(), 1)
}

type failingExporter struct{ calls int }

func (f *failingExporter) ExportSale(context.Context, core.Sale) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

func TestHandleSaleRecordedExportFailureIsReturned(t *testing.T) {
	l := newLedger(t)
	sales := recordSales(t, l, 1)
	w := NewExportWorker(l, &failingExporter{}, 10)

	err := w.HandleSaleRecorded(context.Background(), amqp.NewSaleRecordedMessage(sales[0]))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestBackfill(t *testing.T) {
	l := newLedger(t)
	sales := recordSales(t, l, 5)
	exp := sheetsmem.New(time.UTC)
	w := NewExportWorker(l, exp, 3)

	// The newest sale was already exported by an event.
	_, err := exp.ExportSale(context.Background(), sales[4])
	require.NoError(t, err)

	n, err := w.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows := exp.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, sales[4].ID, rows[1][1])
	assert.Equal(t, sales[2].ID, rows[2][1])
	assert.Equal(t, sales[3].ID, rows[3][1])
}

func TestBackfillReportsFailures(t *testing.T) {
	l := newLedger(t)
	recordSales(t, l, 2)
	f := &failingExporter{}
	w := NewExportWorker(l, f, 10)

	n, err := w.Backfill(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, f.calls)
}
