package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	apihttp "cassa/internal/http"
)

const shutdownTimeout = 30 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on PORT (default 8080). Carts live in memory and are
keyed by a session cookie; the catalog and the ledger live in the configured
store. SIGINT or SIGTERM shuts the server down gracefully.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			cfg, err := LoadConfig(rootOpts)
			if err != nil {
				return f.Fail("serve", err)
			}
			if port != "" {
				cfg.Port = port
			}
			logger := SetupLogger(cfg, cmd.ErrOrStderr())
			logger.Info("Starting cassa", "backend", cfg.DataBackend, "port", cfg.Port)

			ctx, stop := SignalContext(cmd.Context(), logger)
			defer stop()

			app, err := OpenApp(ctx, cfg, logger)
			if err != nil {
				return f.Fail("serve", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("Failed to close backend", "error", err)
				}
			}()

			srv, err := apihttp.NewServer(apihttp.Options{
				Addr:               ":" + cfg.Port,
				Inventory:          app.Inventory,
				Checkout:           app.Checkout,
				Reports:            app.Reports,
				Sales:              app.Backend.Ledger,
				Store:              app.Backend.Store,
				Location:           app.Location,
				Logger:             logger,
				CORSAllowedOrigins: cfg.CORSAllowedOrigins,
				RateLimitRPS:       cfg.RateLimitRPS,
				RateLimitBurst:     cfg.RateLimitBurst,
				SessionIdleTTL:     cfg.SessionIdleTTL,
				MaxSessions:        cfg.MaxSessions,
			})
			if err != nil {
				return f.Fail("serve", err)
			}

			shutdownDone := make(chan struct{})
			go func() {
				defer close(shutdownDone)
				<-ctx.Done()
				logger.Info("Shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Graceful shutdown failed", "error", err)
				}
			}()

			logger.Info("HTTP server listening", "addr", srv.Addr)
			serveErr := srv.ListenAndServe()
			stop()
			<-shutdownDone
			if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return f.Fail("serve", serveErr)
			}
			logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port, overrides PORT")
	return cmd
}
