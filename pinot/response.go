package pinot

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BrokerResponse is the data structure for broker response.
type BrokerResponse struct {
	ResultTable                 *ResultTable      `json:"resultTable,omitempty"`
	Exceptions                  []Exception       `json:"exceptions"`
	TraceInfo                   map[string]string `json:"traceInfo,omitempty"`
	NumServersQueried           int               `json:"numServersQueried"`
	NumServersResponded         int               `json:"numServersResponded"`
	NumSegmentsQueried          int               `json:"numSegmentsQueried"`
	NumSegmentsProcessed        int               `json:"numSegmentsProcessed"`
	NumSegmentsMatched          int               `json:"numSegmentsMatched"`
	NumConsumingSegmentsQueried int               `json:"numConsumingSegmentsQueried"`
	NumDocsScanned              int64             `json:"numDocsScanned"`
	NumEntriesScannedInFilter   int64             `json:"numEntriesScannedInFilter"`
	NumEntriesScannedPostFilter int64             `json:"numEntriesScannedPostFilter"`
	NumGroupsLimitReached       bool              `json:"numGroupsLimitReached"`
	TotalDocs                   int64             `json:"totalDocs"`
	TimeUsedMs                  int               `json:"timeUsedMs"`
	MinConsumingFreshnessTimeMs int64             `json:"minConsumingFreshnessTimeMs"`
}

// Exception is Pinot exceptions.
type Exception struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}

func (e Exception) Error() string {
	return fmt.Sprintf("pinot error %d: %s", e.ErrorCode, e.Message)
}

// Err returns the broker exceptions as one error, or nil when the query succeeded.
func (r *BrokerResponse) Err() error {
	switch len(r.Exceptions) {
	case 0:
		return nil
	case 1:
		return r.Exceptions[0]
	}
	messages := make([]string, 0, len(r.Exceptions))
	for _, e := range r.Exceptions {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("%d pinot errors: %s", len(r.Exceptions), strings.Join(messages, "; "))
}

// RespSchema is response schema
type RespSchema struct {
	ColumnDataTypes []string `json:"columnDataTypes"`
	ColumnNames     []string `json:"columnNames"`
}

// ResultTable holds the rows of a SQL response. Numbers are json.Number.
type ResultTable struct {
	DataSchema RespSchema      `json:"dataSchema"`
	Rows       [][]interface{} `json:"rows"`
}

// RowCount returns how many rows in the ResultTable
func (r ResultTable) RowCount() int {
	return len(r.Rows)
}

// ColumnCount returns how many columns in the ResultTable
func (r ResultTable) ColumnCount() int {
	return len(r.DataSchema.ColumnNames)
}

// ColumnName returns column name given column index
func (r ResultTable) ColumnName(columnIndex int) string {
	return r.DataSchema.ColumnNames[columnIndex]
}

// ColumnDataType returns the Pinot data type of a column, or "" when the broker did not
// report one.
func (r ResultTable) ColumnDataType(columnIndex int) string {
	if columnIndex >= len(r.DataSchema.ColumnDataTypes) {
		return ""
	}
	return r.DataSchema.ColumnDataTypes[columnIndex]
}

// ColumnIndex returns the index of the named column.
func (r ResultTable) ColumnIndex(name string) (int, bool) {
	for i, column := range r.DataSchema.ColumnNames {
		if column == name {
			return i, true
		}
	}
	return -1, false
}

// Get returns a ResultTable entry given row index and column index; nil for short rows.
func (r ResultTable) Get(rowIndex int, columnIndex int) interface{} {
	row := r.Rows[rowIndex]
	if columnIndex >= len(row) {
		return nil
	}
	return row[columnIndex]
}

// Long returns an integer entry.
func (r ResultTable) Long(rowIndex int, columnIndex int) (int64, error) {
	switch v := r.Get(rowIndex, columnIndex).(type) {
	case json.Number:
		return v.Int64()
	case string:
		return json.Number(v).Int64()
	default:
		return 0, fmt.Errorf("value at row %d column %d is %T, not a number", rowIndex, columnIndex, v)
	}
}

// Double returns a floating point entry.
func (r ResultTable) Double(rowIndex int, columnIndex int) (float64, error) {
	switch v := r.Get(rowIndex, columnIndex).(type) {
	case json.Number:
		return v.Float64()
	case string:
		return json.Number(v).Float64()
	default:
		return 0, fmt.Errorf("value at row %d column %d is %T, not a number", rowIndex, columnIndex, v)
	}
}
