package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tables",
		Short:         "List the tables known to the Pinot controller",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	ds, _, err := opts.openDatasource()
	if err != nil {
		return err
	}
	defer ds.Close()

	tables, err := ds.Tables(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, map[string][]string{"tables": tables})
	}
	for _, table := range tables {
		fmt.Fprintln(out, table)
	}
	return nil
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "schema <table>",
		Short:         "Show the columns of a table",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}
}

func runSchema(opts *RootOptions, table string, cmd *cobra.Command) error {
	ds, _, err := opts.openDatasource()
	if err != nil {
		return err
	}
	defer ds.Close()

	schema, err := ds.TableSchema(cmd.Context(), table)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, map[string]any{
			"table":       table,
			"columns":     schema.Columns(),
			"timeColumns": schema.TimeColumns(),
		})
	}

	timeColumns := schema.TimeColumns()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tKIND\tFLAGS")
	for _, column := range schema.Columns() {
		var flags []string
		if column.MultiValued {
			flags = append(flags, "multi-value")
		}
		for _, name := range timeColumns {
			if name == column.Name {
				flags = append(flags, "time")
				break
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", column.Name, column.DataType, column.Kind, strings.Join(flags, ","))
	}
	return tw.Flush()
}
