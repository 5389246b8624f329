package core

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Arithmetic stays in integers; decimal is only used at
// the edges (parsing, formatting, JSON).
type Money struct {
	Cents int64
}

// Upper bounds on user input. Any price times any quantity within them fits in
// int64 with room for summing many lines.
const (
	MaxPriceCents int64 = 1_000_000_000 // $10,000,000.00
	MaxQuantity         = 1_000_000
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// NewMoney returns an amount of the given cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents}
}

// MoneyFromDecimal rounds d half away from zero to the nearest cent. Amounts
// whose cents do not fit in int64 are ErrInvalidAmount.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParsePrice converts a user supplied price to Money.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Amounts are
// rounded half-up to the cent, so "1.005" becomes 101 cents. Signs, empty input and
// amounts that round to zero or exceed MaxPriceCents are rejected.
func ParsePrice(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// ParseQuantity parses a positive integer quantity of at most MaxQuantity.
func ParseQuantity(s string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || q <= 0 {
		return 0, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if q > MaxQuantity {
		return 0, quantityTooLarge()
	}
	return q, nil
}

func quantityTooLarge() error {
	return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be at most %d", MaxQuantity)}
}

// Validate reports whether the amount is a usable price: positive and at most
// MaxPriceCents.
func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxPriceCents {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Mul multiplies by q. Operands within MaxPriceCents and MaxQuantity cannot
// overflow.
func (m Money) Mul(q int) Money {
	return Money{Cents: m.Cents * int64(q)}
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 is meant for chart series only; use Cents for arithmetic.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// String formats the amount for display, e.g. "$9.99".
func (m Money) String() string {
	if m.Cents < 0 {
		return "-$" + Money{Cents: -m.Cents}.Decimal().StringFixed(2)
	}
	return "$" + m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number (9.99).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string. Floating point
// artefacts such as 29.970000000000002 are rounded to the cent.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return fmt.Errorf("amount %s: %w", d.String(), err)
	}
	*m = v
	return nil
}
