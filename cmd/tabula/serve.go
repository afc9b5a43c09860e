package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/tabula/internal/cli"
	httpAdapter "github.com/aretw0/tabula/pkg/adapters/http"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP validation API",
		Long:  `Serves the schema catalog over a JSON API: list schemas, validate records, fetch stored reports and scrape metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.HTTP.Port = port
			}

			rt, err := cli.NewRuntime(a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			opts := []httpAdapter.Option{
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithAllowedOrigins(a.cfg.HTTP.AllowedOrigins...),
				httpAdapter.WithMaxBodyBytes(a.cfg.HTTP.MaxBodyBytes),
			}
			if a.cfg.HTTP.Metrics {
				opts = append(opts, httpAdapter.WithMetrics(rt.Registry))
			}

			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr(),
				Handler:           httpAdapter.NewHandler(rt.Engine, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening", "addr", srv.Addr, "schema_dir", a.cfg.SchemaDir)
				fmt.Fprintf(cmd.ErrOrStderr(), "Starting Tabula Server on %s\n", srv.Addr)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown did not complete: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Tabula Server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	return cmd
}
