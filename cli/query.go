package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"hermannm.dev/wrap"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/datasource"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/frames"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	SQL      string
	Since    time.Duration
	Interval time.Duration
	Timeout  time.Duration
}

type queryOutput struct {
	RefID string `json:"refId"`
	SQL   string `json:"sql"`
	frames.RowSet
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [file]",
		Short: "Run a query against Pinot",
		Long: `Run a query envelope (YAML or JSON) or a raw SQL statement against Pinot and print the
result table.

Envelopes without a time range run over the window given by --since, ending now.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.loadQuery(args, cmd)
			if err != nil {
				return err
			}
			return runQuery(opts, q, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SQL, "sql", "", "raw SQL to run instead of a query file")
	cmd.Flags().DurationVar(&opts.Since, "since", time.Hour, "time window for queries without a time range")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "bucket interval for time macros")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "overall command timeout")

	return cmd
}

func (opts *QueryOptions) loadQuery(args []string, cmd *cobra.Command) (datasource.Query, error) {
	var q datasource.Query
	switch {
	case opts.SQL != "" && len(args) > 0:
		return q, errors.New("pass either a query file or --sql, not both")
	case opts.SQL != "":
		q.EditorMode = datasource.EditorModeCode
		q.RawSQL = opts.SQL
		q.Format = datasource.FormatTable
	case len(args) == 1:
		data, err := readInput(args[0], cmd.InOrStdin())
		if err != nil {
			return q, err
		}
		if err := decodeDocument(data, &q); err != nil {
			return q, wrap.Errorf(err, "invalid query in '%s'", args[0])
		}
	default:
		return q, errors.New("a query file or --sql is required")
	}

	if q.TimeRange.From.IsZero() && q.TimeRange.To.IsZero() {
		now := time.Now()
		q.TimeRange = datasource.TimeRange{From: now.Add(-opts.Since), To: now}
	}
	if q.IntervalMs == 0 && opts.Interval > 0 {
		q.IntervalMs = opts.Interval.Milliseconds()
	}
	return q, nil
}

func runQuery(opts *QueryOptions, q datasource.Query, cmd *cobra.Command) error {
	ds, _, err := opts.openDatasource()
	if err != nil {
		return err
	}
	defer ds.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	result, err := ds.Run(ctx, q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, queryOutput{RefID: result.RefID, SQL: result.SQL, RowSet: result.Rows()})
	}
	rows := result.Rows()
	if err := writeRows(out, rows); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%d rows in %d ms\n", len(rows.Rows), result.Response.TimeUsedMs)
	return err
}
