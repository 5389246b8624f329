package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cassa/internal/backend"
	"cassa/internal/config"
	"cassa/internal/log"
	"cassa/internal/report"
	"cassa/internal/services"
)

// App is an opened backend with the services built on it.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Location  *time.Location
	Backend   *backend.Result
	Inventory *services.Inventory
	Checkout  *services.Checkout
	Reports   *services.Reports
}

// OpenApp opens the configured backend and builds the services on it. Sale
// events are published only when the backend connected to a broker.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	reports := services.NewReports(report.NewAggregator(res.Ledger, res.Catalog, loc), cfg.ReportCacheTTL)
	checkoutOpts := []services.CheckoutOption{services.WithReports(reports)}
	if res.Publisher != nil {
		checkoutOpts = append(checkoutOpts, services.WithPublisher(res.Publisher))
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Location:  loc,
		Backend:   res,
		Inventory: services.NewInventory(res.Catalog, reports),
		Checkout:  services.NewCheckout(res.Catalog, res.Ledger, checkoutOpts...),
		Reports:   reports,
	}, nil
}

// Close releases the backend.
func (a *App) Close() error {
	return a.Backend.Close()
}

// openCommandApp loads configuration and opens the app for a one-shot command.
// Logs go to the command's stderr at warn level unless --verbose is set.
func openCommandApp(cmd *cobra.Command, opts *RootOptions) (*App, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	if !opts.Verbose {
		cfg.LogLevel = "warn"
	}
	logger := SetupLogger(cfg, cmd.ErrOrStderr()).WithComponent(log.ComponentCLI)
	return OpenApp(cmd.Context(), cfg, logger)
}

// withApp runs fn against an opened app and reports failures through f.
func withApp(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter, fn func(*App) error) error {
	app, err := openCommandApp(cmd, opts)
	if err != nil {
		return f.Fail("open store", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			f.VerboseLog("close store: %v", err)
		}
	}()
	return fn(app)
}
