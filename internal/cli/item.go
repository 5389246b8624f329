package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cassa/internal/core"
)

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the item catalog",
	}

	cmd.AddCommand(newItemAddCommand(rootOpts))
	cmd.AddCommand(newItemListCommand(rootOpts))
	cmd.AddCommand(newItemDeleteCommand(rootOpts))
	cmd.AddCommand(newItemImportCommand(rootOpts))

	return cmd
}

func newItemAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <price> <quantity>",
		Short: "Stock an item, merging into an existing one with the same name",
		Long: `Stock quantity units of an item at price. Adding a name that already
exists increases its stock and replaces its price. The price accepts a dot or a
comma as decimal separator.`,
		Example:       "  cassa item add Widget 9.99 10\n  cassa item add \"Caffè\" 1,20 50",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withApp(cmd, rootOpts, f, func(app *App) error {
				item, err := app.Inventory.AddItemText(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return f.Fail("add item", err)
				}
				return f.Success(item, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s: %d in stock at %s\n", item.Name, item.Quantity, item.Price)
					return err
				})
			})
		},
	}
}

func newItemListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the catalog in insertion order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withApp(cmd, rootOpts, f, func(app *App) error {
				items, err := app.Inventory.ListItems(cmd.Context())
				if err != nil && !core.IsWarning(err) {
					return f.Fail("list items", err)
				}
				if items == nil {
					items = []core.Item{}
				}
				return f.SuccessWithWarning(items, warningText(err), func(w io.Writer) error {
					return writeItems(w, items)
				})
			})
		},
	}
}

func newItemDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove every item with the given name",
		Long: `Remove every item with the given name. Deleting a name that is not in
the catalog succeeds without changes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withApp(cmd, rootOpts, f, func(app *App) error {
				if err := app.Inventory.DeleteItem(cmd.Context(), args[0]); err != nil {
					return f.Fail("delete item", err)
				}
				return f.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted %s\n", args[0])
					return err
				})
			})
		},
	}
}

func newItemImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Seed the catalog from a YAML file",
		Long: `Seed the catalog from a YAML file of the form

  items:
    - name: Widget
      price: "9.99"
      quantity: 10

Every entry is validated before any is stored. Use - to read standard input.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					_ = f.Error(CodeInvalidSeed, err.Error(), nil)
					return WrapExitError(ExitCommandError, "open seed file", err)
				}
				defer file.Close()
				in = file
			}

			return withApp(cmd, rootOpts, f, func(app *App) error {
				n, err := app.Inventory.Import(cmd.Context(), in)
				if err != nil {
					return f.Fail("import items", err)
				}
				return f.Success(map[string]int{"imported": n}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Imported %d items\n", n)
					return err
				})
			})
		},
	}
}

func writeItems(w io.Writer, items []core.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No items")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "NAME\tPRICE\tQUANTITY\t")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", it.Name, it.Price, it.Quantity)
	}
	return tw.Flush()
}
