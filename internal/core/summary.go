package core

// ProductTotal aggregates sold units and revenue for one item name.
type ProductTotal struct {
	Name     string
	Quantity int
	Revenue  Money
}
