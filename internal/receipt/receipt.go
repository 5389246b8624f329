// Package receipt renders a recorded sale as a printable plain-text receipt.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"time"

	"cassa/internal/core"
)

const (
	nameWidth = 18
	width     = 43
)

// Render writes the receipt for sale with its timestamp shown in loc.
func Render(w io.Writer, sale core.Sale, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	id := sale.ID
	if id == "" {
		id = "-"
	}
	rule := strings.Repeat("-", width)

	var b strings.Builder
	fmt.Fprintln(&b, "RECEIPT")
	fmt.Fprintf(&b, "Sale:  %s\n", id)
	fmt.Fprintf(&b, "Date:  %s\n", sale.Timestamp.In(loc).Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, rule)
	for _, l := range sale.Lines {
		fmt.Fprintf(&b, "%-*s %3d x %8s %9s\n", nameWidth, truncate(l.Name, nameWidth), l.Quantity, l.UnitPrice, l.LineTotal)
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-*s %9s\n", width-10, "TOTAL", sale.Total)
	fmt.Fprintf(&b, "Items: %d\n", sale.ItemCount())

	_, err := io.WriteString(w, b.String())
	return err
}

// String is Render into a string.
func String(sale core.Sale, loc *time.Location) string {
	var b strings.Builder
	_ = Render(&b, sale, loc)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
