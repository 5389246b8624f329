package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cassa/internal/amqp"
	"cassa/internal/backend"
	"cassa/internal/config"
	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/sheets"
	gsheet "cassa/internal/sheets/google"
	memsheet "cassa/internal/sheets/memory"
	"cassa/internal/worker"
)

// NewWorkerCommand creates the root command of the export worker.
func NewWorkerCommand() *cobra.Command {
	opts := &RootOptions{}
	var (
		batchSize int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "cassa-worker",
		Short: "Export recorded sales to Google Sheets",
		Long: `Consume sale.recorded events from AMQP and append one row per sale line
to the configured Google Sheet. At startup the newest sales are exported again so
events lost while the worker was down are recovered; rows already in the sheet are
not duplicated.

With --dry-run rows are kept in memory and logged instead of sent to Google.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.validate,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)

			cfg := config.Load()
			opts.apply(cfg)
			if err := validateWorkerConfig(cfg, dryRun); err != nil {
				return f.Fail("cassa-worker", fmt.Errorf("%w: %w", ErrConfig, err))
			}
			loc, err := cfg.Location()
			if err != nil {
				return f.Fail("cassa-worker", fmt.Errorf("%w: %w", ErrConfig, err))
			}

			logger := SetupLogger(cfg, cmd.ErrOrStderr()).WithComponent(log.ComponentWorker)
			logger.Info("Starting cassa-worker", "backend", cfg.DataBackend, "dry_run", dryRun)

			ctx, stop := SignalContext(cmd.Context(), logger)
			defer stop()

			// The worker consumes on its own client; the backend must not publish.
			bcfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return f.Fail("cassa-worker", fmt.Errorf("%w: %w", ErrConfig, err))
			}
			bcfg.AMQPURL = ""
			res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
			if err != nil {
				return f.Fail("cassa-worker", err)
			}
			defer res.Close()

			var exporter sheets.SaleExporter
			if dryRun {
				exporter = &loggingExporter{Exporter: memsheet.New(loc), loc: loc}
			} else {
				exporter, err = gsheet.New(ctx, gsheet.Options{
					SpreadsheetID:   cfg.GoogleSpreadsheetID,
					SheetName:       cfg.GoogleSheetName,
					CredentialsJSON: cfg.GoogleServiceAccountJSON,
					CredentialsFile: cfg.GoogleServiceAccountFile,
					Location:        loc,
				})
				if err != nil {
					return f.Fail("cassa-worker", err)
				}
				logger.Info("Google Sheets client initialized",
					"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
			}

			consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				return f.Fail("cassa-worker", err)
			}
			defer consumer.Close()

			w := worker.NewExportWorker(res.Ledger, exporter, batchSize)
			return runWorker(ctx, w, consumer, f)
		},
	}

	addGlobalFlags(cmd, opts)
	cmd.Flags().IntVar(&batchSize, "backfill", 50, "number of recent sales exported again at startup")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log rows instead of writing to Google Sheets")
	return cmd
}

// eventSource is the consuming side of the broker client.
type eventSource interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// runWorker backfills and consumes concurrently until ctx is done. A failed
// backfill is logged; only the consumer ends the worker.
func runWorker(ctx context.Context, w *worker.ExportWorker, events eventSource, f *OutputFormatter) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := w.Backfill(gctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.WarnContext(gctx, "Backfill incomplete", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		return events.Consume(gctx, w.HandleSaleRecorded)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return f.Fail("consume sale events", err)
	}
	return nil
}

func validateWorkerConfig(cfg *config.Config, dryRun bool) error {
	if !dryRun {
		return cfg.ValidateWorker()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the export worker")
	}
	if cfg.DataBackend == config.BackendMemory {
		return errors.New("the export worker needs a persistent data backend")
	}
	return nil
}

// loggingExporter logs each exported sale's rows.
type loggingExporter struct {
	*memsheet.Exporter
	loc *time.Location
}

func (e *loggingExporter) ExportSale(ctx context.Context, sale core.Sale) (string, error) {
	ref, err := e.Exporter.ExportSale(ctx, sale)
	if err != nil {
		return "", err
	}
	for _, row := range sheets.Rows(sale, e.loc) {
		slog.InfoContext(ctx, "Dry run row", "sale_id", sale.ID, "row", row)
	}
	return ref, nil
}
