package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"cassa/internal/backend"
	"cassa/internal/config"
)

// RootOptions holds global flags for all commands. Empty storage flags leave the
// environment's values in place.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Backend string
	DataDir string
	DBPath  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cassa CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cassa",
		Short: "cassa - point of sale and inventory",
		Long: `A small point of sale: an item catalog, a cart-based checkout that
decrements stock, an append-only sale ledger and sales reports.

Run "cassa serve" for the HTTP API, or use the item, sell, sales and report
commands directly against the configured store.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.validate,
	}

	addGlobalFlags(cmd, opts)

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewSellCommand(opts))
	cmd.AddCommand(NewSalesCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

func addGlobalFlags(cmd *cobra.Command, opts *RootOptions) {
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (memory|file|sqlite), overrides DATA_BACKEND")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory for the file backend, overrides DATA_DIR")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path for the sqlite backend, overrides SQLITE_DB_PATH")
}

func (o *RootOptions) validate(cmd *cobra.Command, args []string) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.Backend != "" && !backend.BackendType(o.Backend).IsValid() {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid backend %q: must be one of %v", o.Backend, backend.BackendTypes()))
	}
	return nil
}

// apply overrides cfg with the storage flags that were set.
func (o *RootOptions) apply(cfg *config.Config) {
	if o.Backend != "" {
		cfg.DataBackend = o.Backend
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.DBPath != "" {
		cfg.SQLiteDBPath = o.DBPath
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
