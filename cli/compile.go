package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"hermannm.dev/wrap"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/macros"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Expand   bool
	Since    time.Duration
	Interval string
}

type compileOutput struct {
	SQL         string                  `json:"sql"`
	VisualQuery visualquery.VisualQuery `json:"visualQuery"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a visual query file to Pinot SQL",
		Long: `Compile a visual query written as YAML or JSON to the SQL sent to Pinot.
Use "-" to read the query from stdin.

Time series queries contain the $__timeFilter macro; pass --expand to resolve it
against a window ending now.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Expand, "expand", false, "expand time macros")
	cmd.Flags().DurationVar(&opts.Since, "since", time.Hour, "length of the time window used by --expand")
	cmd.Flags().StringVar(&opts.Interval, "interval", "", "bucket interval used by --expand (e.g. 5m)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	var q visualquery.VisualQuery
	if err := decodeDocument(data, &q); err != nil {
		return wrap.Errorf(err, "invalid visual query in '%s'", path)
	}

	sql := visualquery.Compile(q)
	if sql == "" {
		return fmt.Errorf("visual query in '%s' has no table", path)
	}

	if opts.Expand {
		timeRange, err := opts.timeRange(time.Now())
		if err != nil {
			return err
		}
		if sql, err = macros.Expand(sql, timeRange); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, compileOutput{SQL: sql, VisualQuery: q})
	}
	_, err = fmt.Fprintln(out, sql)
	return err
}

func (opts *CompileOptions) timeRange(now time.Time) (macros.TimeRange, error) {
	if opts.Since <= 0 {
		return macros.TimeRange{}, fmt.Errorf("--since must be positive, got %s", opts.Since)
	}
	r := macros.TimeRange{From: now.Add(-opts.Since), To: now}
	if opts.Interval != "" {
		interval, err := macros.ParseInterval(opts.Interval)
		if err != nil {
			return macros.TimeRange{}, wrap.Error(err, "invalid --interval")
		}
		r.Interval = interval
	}
	return r, nil
}
