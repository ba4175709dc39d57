package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/api"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/datasource"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query editor HTTP API",
		Long: `Serve compile previews, query execution and table metadata over HTTP until
interrupted. The address defaults to API_ADDRESS.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, cfg, err := rootOpts.openDatasource()
			if err != nil {
				return err
			}
			defer ds.Close()

			if address != "" {
				cfg.API.Address = address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.New(ds, api.Config{
				Address:          cfg.API.Address,
				ArrowCompression: cfg.API.Compression(),
			})
			if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address (overrides API_ADDRESS)")

	return cmd
}

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "health",
		Short:         "Test the connection to Pinot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := rootOpts.openDatasource()
			if err != nil {
				return err
			}
			defer ds.Close()

			result := ds.CheckHealth(cmd.Context())
			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%s: %s\n", result.Status, result.Message)
			}
			if result.Status != datasource.HealthOK {
				return &ExitError{Code: 1, Message: result.Message}
			}
			return nil
		},
	}
}

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
