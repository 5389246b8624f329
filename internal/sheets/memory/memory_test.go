package memory

import (
	"context"
	"testing"
	"time"

	"cassa/internal/core"
)

func TestExporterIsIdempotent(t *testing.T) {
	e := New(time.UTC)
	sale := core.NewSale([]core.CartLine{
		core.NewCartLine(core.Item{Name: "Widget", Price: core.NewMoney(999)}, 1),
		core.NewCartLine(core.Item{Name: "Pen", Price: core.NewMoney(150)}, 1),
	}, time.Now())

	ref, err := e.ExportSale(context.Background(), sale)
	if err != nil {
		t.Fatalf("ExportSale() error = %v", err)
	}
	if ref != "mem:2-3" {
		t.Errorf("ExportSale() ref = %q, want mem:2-3", ref)
	}
	if _, err := e.ExportSale(context.Background(), sale); err != nil {
		t.Fatalf("second ExportSale() error = %v", err)
	}
	if got := len(e.Rows()); got != 3 {
		t.Errorf("Rows() = %d rows, want header plus 2", got)
	}
}
