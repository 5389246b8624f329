package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

type (
	// Item is a catalog entry. Name is the identity: exact, case-sensitive.
	Item struct {
		Name     string `json:"name"`
		Price    Money  `json:"price"`
		Quantity int    `json:"quantity"`
	}

	// CartLine is one priced line of a cart or a recorded sale.
	CartLine struct {
		Name      string `json:"name"`
		Quantity  int    `json:"quantity"`
		UnitPrice Money  `json:"price"`
		LineTotal Money  `json:"total"`
	}

	// Sale is an immutable ledger record.
	Sale struct {
		ID        string     `json:"id,omitempty"`
		Lines     []CartLine `json:"items"`
		Total     Money      `json:"total"`
		Timestamp time.Time  `json:"timestamp"`
	}
)

const maxNameLength = 120

// NormalizeName trims surrounding whitespace and converts the name to NFC so that
// composed and decomposed spellings of the same text share one identity.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// NewCartLine prices quantity units of item at its current price.
func NewCartLine(item Item, quantity int) CartLine {
	return CartLine{
		Name:      item.Name,
		Quantity:  quantity,
		UnitPrice: item.Price,
		LineTotal: item.Price.Mul(quantity),
	}
}

// NewSale builds a sale record from cart lines. The lines are copied so later
// changes to the caller's slice cannot reach the recorded sale.
func NewSale(lines []CartLine, at time.Time) Sale {
	copied := append([]CartLine(nil), lines...)
	var total Money
	for _, l := range copied {
		total = total.Add(l.LineTotal)
	}
	return Sale{
		ID:        uuid.NewString(),
		Lines:     copied,
		Total:     total,
		Timestamp: at.UTC(),
	}
}

// ItemCount returns the number of units sold in the sale.
func (s Sale) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// ValidateItemInput checks a catalog addition before it reaches the store.
func ValidateItemInput(name string, price Money, quantity int) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := price.Validate(); err != nil {
		return &ValidationError{Field: "price", Reason: "must be a positive amount up to " + NewMoney(MaxPriceCents).String()}
	}
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if quantity > MaxQuantity {
		return quantityTooLarge()
	}
	return nil
}

// ValidateSaleInput checks a cart addition against the stock that is still available.
func ValidateSaleInput(name string, quantity, available int) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "select an item"}
	}
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if quantity > MaxQuantity {
		return quantityTooLarge()
	}
	if quantity > available {
		return &InsufficientStockError{Name: name, Requested: quantity, Available: available}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if len(name) > maxNameLength {
		return &ValidationError{Field: "name", Reason: "is too long (max 120 bytes)"}
	}
	return nil
}
