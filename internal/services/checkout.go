package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cassa/internal/core"
	"cassa/internal/log"
)

// Checkout turns carts into recorded sales. The mutex serializes the
// check-then-decrement sequence across sessions sharing one catalog.
type Checkout struct {
	mu        sync.Mutex
	catalog   CatalogStore
	ledger    SaleRecorder
	reports   *Reports
	publisher SalePublisher
	now       func() time.Time
}

type CheckoutOption func(*Checkout)

// WithReports refreshes r after every completed sale.
func WithReports(r *Reports) CheckoutOption {
	return func(c *Checkout) { c.reports = r }
}

// WithPublisher announces completed sales through p. A nil publisher is ignored.
func WithPublisher(p SalePublisher) CheckoutOption {
	return func(c *Checkout) { c.publisher = p }
}

func WithCheckoutClock(now func() time.Time) CheckoutOption {
	return func(c *Checkout) { c.now = now }
}

func NewCheckout(catalog CatalogStore, ledger SaleRecorder, opts ...CheckoutOption) *Checkout {
	c := &Checkout{
		catalog: catalog,
		ledger:  ledger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddToCart prices quantity units of name and appends the line to cart. The
// request is rejected when the cart would hold more units than are in stock.
func (c *Checkout) AddToCart(ctx context.Context, cart *core.Cart, name string, quantity int) (core.CartLine, error) {
	name = core.NormalizeName(name)
	if err := validateCartRequest(name, quantity); err != nil {
		return core.CartLine{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.catalog.Get(ctx, name)
	if err != nil {
		return core.CartLine{}, err
	}

	if err := item.Price.Validate(); err != nil {
		return core.CartLine{}, &core.ValidationError{Field: "price", Reason: fmt.Sprintf("of %q is out of range", item.Name)}
	}

	requested := cart.QuantityOf(item.Name) + quantity
	if err := core.ValidateSaleInput(item.Name, requested, item.Quantity); err != nil {
		return core.CartLine{}, err
	}

	line := core.NewCartLine(item, quantity)
	cart.Add(line)
	slog.DebugContext(ctx, "Cart line added",
		log.FieldItemName, line.Name,
		log.FieldQuantity, line.Quantity,
		log.FieldTotalCents, line.LineTotal.Cents)
	return line, nil
}

// CompleteSale checks every line against current stock, decrements the catalog,
// records the sale and removes the sold lines from the cart. Nothing is mutated
// when a check fails.
func (c *Checkout) CompleteSale(ctx context.Context, cart *core.Cart) (core.Sale, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := cart.Lines()
	if len(lines) == 0 {
		return core.Sale{}, core.ErrEmptyCart
	}

	order, demand := core.Demand(lines)
	for _, name := range order {
		item, err := c.catalog.Get(ctx, name)
		if err != nil {
			return core.Sale{}, err
		}
		if err := core.ValidateSaleInput(name, demand[name], item.Quantity); err != nil {
			return core.Sale{}, err
		}
	}

	adjusted := make([]string, 0, len(order))
	for _, name := range order {
		if _, err := c.catalog.AdjustQuantity(ctx, name, -demand[name]); err != nil {
			c.restock(ctx, adjusted, demand)
			return core.Sale{}, fmt.Errorf("decrement stock for %q: %w", name, err)
		}
		adjusted = append(adjusted, name)
	}

	sale := core.NewSale(lines, c.now())
	if err := c.ledger.RecordSale(ctx, sale); err != nil {
		c.restock(ctx, adjusted, demand)
		return core.Sale{}, fmt.Errorf("record sale: %w", err)
	}
	cart.Consume(lines)

	slog.InfoContext(ctx, "Sale completed",
		log.FieldSaleID, sale.ID,
		log.FieldTotalCents, sale.Total.Cents,
		log.FieldLines, len(sale.Lines))

	if c.reports != nil {
		if _, err := c.reports.Refresh(ctx); err != nil && !core.IsWarning(err) {
			slog.WarnContext(ctx, "Failed to refresh reports", log.FieldError, err)
		}
	}

	if c.publisher != nil {
		if err := c.publisher.PublishSaleRecorded(ctx, sale); err != nil {
			// The sale is already in the ledger; the worker backfill picks it up.
			slog.ErrorContext(ctx, "Failed to publish sale event",
				log.FieldSaleID, sale.ID, log.FieldError, err)
		}
	}

	return sale, nil
}

// restock undoes decrements applied before a later step failed.
func (c *Checkout) restock(ctx context.Context, names []string, demand map[string]int) {
	for _, name := range names {
		if _, err := c.catalog.AdjustQuantity(ctx, name, demand[name]); err != nil {
			slog.ErrorContext(ctx, "Failed to restore stock",
				log.FieldItemName, name,
				log.FieldQuantity, demand[name],
				log.FieldError, err)
		}
	}
}

func validateCartRequest(name string, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return &core.ValidationError{Field: "name", Reason: "select an item"}
	}
	if quantity <= 0 {
		return &core.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if quantity > core.MaxQuantity {
		return &core.ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be at most %d", core.MaxQuantity)}
	}
	return nil
}

// IsUserError reports whether err is caused by the request rather than the system.
func IsUserError(err error) bool {
	return errors.Is(err, core.ErrValidation) ||
		errors.Is(err, core.ErrInsufficientStock) ||
		errors.Is(err, core.ErrItemNotFound) ||
		errors.Is(err, core.ErrEmptyCart)
}
