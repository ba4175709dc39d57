package datasource

import (
	"time"

	"hermannm.dev/enumnames"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/macros"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

// EditorMode tells whether a query was built visually or typed as SQL.
type EditorMode uint8

const (
	EditorModeBuilder EditorMode = iota + 1
	EditorModeCode
)

var editorModeNames = enumnames.NewMap(map[EditorMode]string{
	EditorModeBuilder: "builder",
	EditorModeCode:    "code",
})

func (mode EditorMode) IsValid() bool {
	return editorModeNames.ContainsEnumValue(mode)
}

// String defaults to builder.
func (mode EditorMode) String() string {
	return editorModeNames.GetNameOrFallback(mode, "builder")
}

func (mode EditorMode) MarshalJSON() ([]byte, error) {
	if !mode.IsValid() {
		return editorModeNames.MarshalToNameJSON(EditorModeBuilder)
	}
	return editorModeNames.MarshalToNameJSON(mode)
}

func (mode *EditorMode) UnmarshalJSON(bytes []byte) error {
	switch string(bytes) {
	case `""`, "null":
		*mode = 0
		return nil
	}
	return editorModeNames.UnmarshalFromNameJSON(bytes, mode)
}

// Format is the shape results are returned in.
type Format uint8

const (
	FormatTable Format = iota + 1
	FormatTimeSeries
)

var formatNames = enumnames.NewMap(map[Format]string{
	FormatTable:      "table",
	FormatTimeSeries: "time_series",
})

func (format Format) IsValid() bool {
	return formatNames.ContainsEnumValue(format)
}

func (format Format) String() string {
	return formatNames.GetNameOrFallback(format, "table")
}

func (format Format) MarshalJSON() ([]byte, error) {
	if !format.IsValid() {
		return formatNames.MarshalToNameJSON(FormatTable)
	}
	return formatNames.MarshalToNameJSON(format)
}

func (format *Format) UnmarshalJSON(bytes []byte) error {
	switch string(bytes) {
	case `""`, "null":
		*format = 0
		return nil
	}
	return formatNames.UnmarshalFromNameJSON(bytes, format)
}

// TimeRange is the dashboard window a query runs for.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Query is the envelope an editing surface sends for execution.
type Query struct {
	RefID       string                  `json:"refId"`
	EditorMode  EditorMode              `json:"editorMode"`
	RawSQL      string                  `json:"rawSql,omitempty"`
	VisualQuery visualquery.VisualQuery `json:"visualQuery"`
	Format      Format                  `json:"format"`
	TimeRange   TimeRange               `json:"timeRange"`
	IntervalMs  int64                   `json:"intervalMs,omitempty"`
}

func (q Query) macroTimeRange() macros.TimeRange {
	return macros.TimeRange{
		From:     q.TimeRange.From,
		To:       q.TimeRange.To,
		Interval: time.Duration(q.IntervalMs) * time.Millisecond,
	}
}

// timeColumn is the column time-series results are keyed on.
func (q Query) timeColumn() string {
	if q.EditorMode == EditorModeCode {
		return ""
	}
	column, _ := q.VisualQuery.TimeColumn()
	return column
}
