package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cassa/internal/core"
	"cassa/internal/receipt"
)

// saleResult is the JSON payload of a completed sale.
type saleResult struct {
	Sale    core.Sale `json:"sale"`
	Receipt string    `json:"receipt"`
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <name=quantity>...",
		Short: "Sell items in one transaction and print the receipt",
		Long: `Fill one cart with the given lines and complete the sale. Each line is
checked against stock as it is added, and all lines are checked again before any
stock is taken. A rejected line aborts the whole sale.`,
		Example:       "  cassa sell Widget=3 \"Caffè=2\"",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			type request struct {
				name     string
				quantity int
			}
			reqs := make([]request, 0, len(args))
			for _, arg := range args {
				name, qty, err := parseSellArg(arg)
				if err != nil {
					return f.Fail("parse line", err)
				}
				reqs = append(reqs, request{name, qty})
			}

			return withApp(cmd, rootOpts, f, func(app *App) error {
				ctx := cmd.Context()
				cart := core.NewCart()
				for _, r := range reqs {
					line, err := app.Checkout.AddToCart(ctx, cart, r.name, r.quantity)
					if err != nil {
						return f.Fail("add to cart", err)
					}
					f.VerboseLog("Added %d x %s at %s", line.Quantity, line.Name, line.UnitPrice)
				}

				sale, err := app.Checkout.CompleteSale(ctx, cart)
				if err != nil {
					return f.Fail("complete sale", err)
				}
				return f.Success(saleResult{Sale: sale, Receipt: receipt.String(sale, app.Location)},
					func(w io.Writer) error { return receipt.Render(w, sale, app.Location) })
			})
		},
	}
}

// parseSellArg splits "name=quantity" at the last '='.
func parseSellArg(arg string) (string, int, error) {
	i := strings.LastIndex(arg, "=")
	if i < 0 {
		return "", 0, &core.ValidationError{Field: "line", Reason: "must be name=quantity"}
	}
	qty, err := core.ParseQuantity(arg[i+1:])
	if err != nil {
		return "", 0, err
	}
	return arg[:i], qty, nil
}
