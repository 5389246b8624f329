package core

import "sync"

// Cart is the transient list of lines a session assembles before completing a sale.
// It is owned by one session and never persisted. A Cart must not be copied after
// first use.
type Cart struct {
	mu    sync.Mutex
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add appends a line. Lines for the same item are kept separate, in insertion order.
func (c *Cart) Add(line CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CartLine(nil), c.lines...)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Total is the sum of all line totals.
func (c *Cart) Total() Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total Money
	for _, l := range c.lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// QuantityOf returns how many units of name the cart already holds.
func (c *Cart) QuantityOf(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		if l.Name == name {
			n += l.Quantity
		}
	}
	return n
}

// Consume removes sold from the front of the cart where the lines still match,
// keeping lines added after the snapshot was taken.
func (c *Cart) Consume(sold []CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for n < len(sold) && n < len(c.lines) && c.lines[n] == sold[n] {
		n++
	}
	c.lines = append([]CartLine(nil), c.lines[n:]...)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Demand aggregates quantities per item name, in order of first appearance.
func Demand(lines []CartLine) ([]string, map[string]int) {
	order := make([]string, 0, len(lines))
	qty := make(map[string]int, len(lines))
	for _, l := range lines {
		if _, seen := qty[l.Name]; !seen {
			order = append(order, l.Name)
		}
		qty[l.Name] += l.Quantity
	}
	return order, qty
}
