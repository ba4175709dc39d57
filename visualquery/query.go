package visualquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DefaultLimit is the row limit of a freshly created visual query.
const DefaultLimit = 100

// FilterCondition restricts rows by comparing a column against a textual value.
// Whether the value is rendered as a number or a string is decided at compile time.
type FilterCondition struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// AggregationConfig renders as FUNC(column) or FUNC(column) AS alias.
type AggregationConfig struct {
	Func   string `json:"func"`
	Column string `json:"column"`
	Alias  string `json:"alias,omitempty"`
}

// OrderByConfig orders the result by one column.
type OrderByConfig struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// TimeSeriesConfig designates a time column that is automatically selected, grouped and
// ordered by, and optionally filtered by the dashboard time range.
type TimeSeriesConfig struct {
	Enabled             bool   `json:"enabled"`
	TimeColumn          string `json:"timeColumn,omitempty"`
	AutoApplyTimeFilter bool   `json:"autoApplyTimeFilter"`
}

// VisualQuery is the structured, form-driven representation of a query.
// The order of every list is preserved in the compiled statement.
type VisualQuery struct {
	Table        string              `json:"table,omitempty"`
	Columns      []string            `json:"columns"`
	Filters      []FilterCondition   `json:"filters"`
	Aggregations []AggregationConfig `json:"aggregations"`
	GroupBy      []string            `json:"groupBy"`
	OrderBy      []OrderByConfig     `json:"orderBy"`
	// Limit is nil when no limit was chosen.
	Limit      *int              `json:"limit,omitempty"`
	TimeSeries *TimeSeriesConfig `json:"timeSeries,omitempty"`
}

// NewVisualQuery returns the all-empty query an editor starts from.
func NewVisualQuery() VisualQuery {
	limit := DefaultLimit
	return VisualQuery{
		Columns:      []string{},
		Filters:      []FilterCondition{},
		Aggregations: []AggregationConfig{},
		GroupBy:      []string{},
		OrderBy:      []OrderByConfig{},
		Limit:        &limit,
		TimeSeries:   &TimeSeriesConfig{},
	}
}

// WithTable returns a copy of q pointed at table. Table-specific state (columns, filters,
// aggregations, grouping and ordering) is reset; the limit and time-series settings are kept.
func (q VisualQuery) WithTable(table string) VisualQuery {
	next := q.Clone()
	next.Table = table
	next.Columns = []string{}
	next.Filters = []FilterCondition{}
	next.Aggregations = []AggregationConfig{}
	next.GroupBy = []string{}
	next.OrderBy = []OrderByConfig{}
	return next
}

// WithLimit returns a copy of q with the given limit. Non-positive limits are kept as given and
// left out of the compiled statement.
func (q VisualQuery) WithLimit(limit int) VisualQuery {
	next := q.Clone()
	next.Limit = &limit
	return next
}

// Clone returns a deep copy of q.
func (q VisualQuery) Clone() VisualQuery {
	c := q
	c.Columns = cloneSlice(q.Columns)
	c.Filters = cloneSlice(q.Filters)
	c.Aggregations = cloneSlice(q.Aggregations)
	c.GroupBy = cloneSlice(q.GroupBy)
	c.OrderBy = cloneSlice(q.OrderBy)
	if q.Limit != nil {
		limit := *q.Limit
		c.Limit = &limit
	}
	if q.TimeSeries != nil {
		ts := *q.TimeSeries
		c.TimeSeries = &ts
	}
	return c
}

// Equal reports whether q and other describe the same query.
// A nil list and an empty list are considered equal.
func (q VisualQuery) Equal(other VisualQuery) bool {
	return reflect.DeepEqual(q.normalized(), other.normalized())
}

func (q VisualQuery) normalized() VisualQuery {
	n := q.Clone()
	if n.Columns == nil {
		n.Columns = []string{}
	}
	if n.Filters == nil {
		n.Filters = []FilterCondition{}
	}
	if n.Aggregations == nil {
		n.Aggregations = []AggregationConfig{}
	}
	if n.GroupBy == nil {
		n.GroupBy = []string{}
	}
	if n.OrderBy == nil {
		n.OrderBy = []OrderByConfig{}
	}
	for i := range n.OrderBy {
		if !n.OrderBy[i].Direction.IsValid() {
			n.OrderBy[i].Direction = DirectionAscending
		}
	}
	return n
}

// TimeColumn returns the designated time column when time-series mode is active.
func (q VisualQuery) TimeColumn() (string, bool) {
	if q.TimeSeries == nil || !q.TimeSeries.Enabled || q.TimeSeries.TimeColumn == "" {
		return "", false
	}
	return q.TimeSeries.TimeColumn, true
}

// UnmarshalJSON accepts the limit either as a number or as a numeric string, which is what
// text inputs of editing surfaces produce. Anything else leaves the limit unset.
func (q *VisualQuery) UnmarshalJSON(data []byte) error {
	type plain VisualQuery
	var decoded struct {
		plain
		Limit json.RawMessage `json:"limit,omitempty"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*q = VisualQuery(decoded.plain)
	q.Limit = parseLimit(decoded.Limit)
	return nil
}

// UnmarshalJSON keeps a number or boolean value as its literal text.
func (f *FilterCondition) UnmarshalJSON(data []byte) error {
	type plain FilterCondition
	var decoded struct {
		plain
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*f = FilterCondition(decoded.plain)
	f.Value = ""
	raw := bytes.TrimSpace(decoded.Value)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &f.Value); err != nil {
			return err
		}
	case raw[0] == '[' || raw[0] == '{':
		return fmt.Errorf("filter value for %q must be a scalar", f.Column)
	default:
		f.Value = string(raw)
	}
	return nil
}

func parseLimit(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
	}
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != f || f >= float64(maxInt) || f < float64(minInt) {
		return nil
	}
	n := int(f)
	return &n
}

const (
	maxInt = int(^uint(0) >> 1)
	minInt = -maxInt - 1
)

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
