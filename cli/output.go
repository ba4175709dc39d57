package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/frames"
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeRows(w io.Writer, set frames.RowSet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	names := make([]string, len(set.Columns))
	for i, column := range set.Columns {
		names[i] = column.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	for _, row := range set.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			if value == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprint(value)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
