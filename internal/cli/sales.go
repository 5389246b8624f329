package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cassa/internal/core"
	"cassa/internal/receipt"
)

// NewSalesCommand creates the sales command group.
func NewSalesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Inspect the sale ledger",
	}

	cmd.AddCommand(newSalesListCommand(rootOpts))
	cmd.AddCommand(newSalesReceiptCommand(rootOpts))

	return cmd
}

func newSalesListCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List recorded sales, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if limit < 0 {
				return f.Fail("list sales", &core.ValidationError{Field: "limit", Reason: "must not be negative"})
			}
			return withApp(cmd, rootOpts, f, func(app *App) error {
				sales, err := app.Backend.Ledger.ListSales(cmd.Context())
				if err != nil && !core.IsWarning(err) {
					return f.Fail("list sales", err)
				}
				if limit > 0 && len(sales) > limit {
					sales = sales[len(sales)-limit:]
				}
				if sales == nil {
					sales = []core.Sale{}
				}
				return f.SuccessWithWarning(sales, warningText(err), func(w io.Writer) error {
					return writeSales(w, sales, app.Location)
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the newest N sales (0 for all)")
	return cmd
}

func newSalesReceiptCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "receipt <sale-id>",
		Short:         "Print the receipt of a recorded sale",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withApp(cmd, rootOpts, f, func(app *App) error {
				sale, err := app.Backend.Ledger.Get(cmd.Context(), args[0])
				if err != nil {
					return f.Fail("load sale", err)
				}
				return f.Success(saleResult{Sale: sale, Receipt: receipt.String(sale, app.Location)},
					func(w io.Writer) error { return receipt.Render(w, sale, app.Location) })
			})
		},
	}
}

func writeSales(w io.Writer, sales []core.Sale, loc *time.Location) error {
	if len(sales) == 0 {
		_, err := fmt.Fprintln(w, "No sales")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tID\tITEMS\tTOTAL")
	for _, s := range sales {
		id := s.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Timestamp.In(loc).Format(time.DateTime), id, s.ItemCount(), s.Total)
	}
	return tw.Flush()
}
