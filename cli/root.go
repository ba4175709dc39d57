// Package cli implements the pinot-visual-query command line.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/config"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/datasource"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Datasource is what the commands need from a connected datasource.
type Datasource interface {
	Compile(q visualquery.VisualQuery) string
	Run(ctx context.Context, q datasource.Query) (*datasource.Result, error)
	Tables(ctx context.Context) ([]string, error)
	TableSchema(ctx context.Context, table string) (*pinot.Schema, error)
	CheckHealth(ctx context.Context) datasource.HealthResult
	Close()
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	EnvFile string

	// Connect opens the datasource for commands that talk to Pinot.
	Connect func(settings datasource.Settings) (Datasource, error)
}

func connect(settings datasource.Settings) (Datasource, error) {
	service, err := datasource.Connect(settings)
	if err != nil {
		return nil, err
	}
	return service, nil
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Connect: connect})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pinot-visual-query",
		Short: "Compile visual queries to Pinot SQL and run them",
		Long: `Compile visual queries to Apache Pinot SQL, run them against a cluster and serve the
HTTP API used by query editors.

Connection settings are read from the environment (PINOT_BROKER_URLS, PINOT_CONTROLLER_URL, ...)
and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "env file to load instead of .env")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))

	return cmd
}

func (opts *RootOptions) readConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.EnvFile != "" {
		cfg, err = config.ReadFromFile(opts.EnvFile)
	} else {
		cfg, err = config.ReadFromEnv()
	}
	if err != nil {
		return config.Config{}, err
	}
	cfg.Log.ConfigureLogging()
	return cfg, nil
}

func (opts *RootOptions) openDatasource() (Datasource, config.Config, error) {
	cfg, err := opts.readConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	ds, err := opts.Connect(cfg.Pinot.Settings())
	if err != nil {
		return nil, config.Config{}, err
	}
	return ds, cfg, nil
}
