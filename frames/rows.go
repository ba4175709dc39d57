package frames

import "github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"

// Column describes one column of a row view.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// RowSet is a JSON-friendly view of a result table.
type RowSet struct {
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Rows returns the result table as columns plus rows. Short rows are padded with nulls and
// numbers keep their json.Number text.
func Rows(table *pinot.ResultTable) RowSet {
	set := RowSet{Columns: []Column{}, Rows: [][]interface{}{}}
	if table == nil {
		return set
	}
	for i := 0; i < table.ColumnCount(); i++ {
		set.Columns = append(set.Columns, Column{Name: table.ColumnName(i), Type: table.ColumnDataType(i)})
	}
	for row := 0; row < table.RowCount(); row++ {
		values := make([]interface{}, table.ColumnCount())
		for col := range values {
			values[col] = table.Get(row, col)
		}
		set.Rows = append(set.Rows, values)
	}
	return set
}
