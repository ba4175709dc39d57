package visualquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrependTimeSelect(t *testing.T) {
	assert.Equal(t, []string{"ts", "*"}, prependTimeSelect(nil, "ts"))
	assert.Equal(t, []string{"ts", "*"}, prependTimeSelect([]string{"ts"}, "ts"))
	assert.Equal(t, []string{"ts", "a", "b"}, prependTimeSelect([]string{"a", "ts", "b"}, "ts"))
	assert.Equal(t, []string{"ts", "COUNT(*)"}, prependTimeSelect([]string{"COUNT(*)"}, "ts"))
}

func TestPrependTimeFilter(t *testing.T) {
	assert.Equal(t, []string{"$__timeFilter(ts)"}, prependTimeFilter(nil, "ts"))
	assert.Equal(t,
		[]string{"$__timeFilter(ts)", "a = 1"},
		prependTimeFilter([]string{"a = 1"}, "ts"),
	)
}

func TestPrependTimeGroup(t *testing.T) {
	assert.Equal(t, []string{"ts"}, prependTimeGroup(nil, "ts"))
	assert.Equal(t, []string{"ts", "host"}, prependTimeGroup([]string{"host"}, "ts"))
	assert.Equal(t, []string{"host", "ts"}, prependTimeGroup([]string{"host", "ts"}, "ts"))
}

func TestPrependTimeOrder(t *testing.T) {
	assert.Equal(t,
		[]OrderByConfig{{Column: "ts", Direction: DirectionAscending}},
		prependTimeOrder(nil, "ts"),
	)
	existing := []OrderByConfig{{Column: "v", Direction: DirectionDescending}, {Column: "ts", Direction: DirectionDescending}}
	assert.Equal(t, existing, prependTimeOrder(existing, "ts"))
	assert.Equal(t,
		[]OrderByConfig{{Column: "ts", Direction: DirectionAscending}, {Column: "v", Direction: DirectionDescending}},
		prependTimeOrder(existing[:1], "ts"),
	)
}

func TestApplyTimeSeries(t *testing.T) {
	base := statement{
		selectItems:  []string{"COUNT(*)"},
		from:         "events",
		where:        []string{"host = 'a'"},
		aggregations: 1,
	}

	withFilter := applyTimeSeries(base, "ts", true)
	assert.Equal(t, []string{"ts", "COUNT(*)"}, withFilter.selectItems)
	assert.Equal(t, []string{"$__timeFilter(ts)", "host = 'a'"}, withFilter.where)
	assert.Equal(t, []string{"ts"}, withFilter.groupBy)
	assert.Equal(t, []OrderByConfig{{Column: "ts", Direction: DirectionAscending}}, withFilter.orderBy)
	assert.Equal(t,
		"SELECT ts, COUNT(*) FROM events WHERE $__timeFilter(ts) AND host = 'a' GROUP BY ts ORDER BY ts ASC",
		withFilter.render(),
	)

	withoutFilter := applyTimeSeries(base, "ts", false)
	assert.Equal(t, []string{"host = 'a'"}, withoutFilter.where)

	base.aggregations = 0
	base.selectItems = []string{"host"}
	noAggregation := applyTimeSeries(base, "ts", false)
	assert.Empty(t, noAggregation.groupBy)
	assert.Equal(t, "SELECT ts, host FROM events WHERE host = 'a' ORDER BY ts ASC", noAggregation.render())
}

func TestTimeSeriesIgnoresBlankAggregation(t *testing.T) {
	q := VisualQuery{
		Table:        "events",
		Aggregations: []AggregationConfig{{Func: "", Column: "latency"}},
		TimeSeries:   &TimeSeriesConfig{Enabled: true, TimeColumn: "ts"},
	}
	assert.Equal(t, "SELECT ts, * FROM events ORDER BY ts ASC", Compile(q))

	q.Aggregations = append(q.Aggregations, AggregationConfig{Func: "MAX"})
	assert.Equal(t, "SELECT ts, MAX(*) FROM events GROUP BY ts ORDER BY ts ASC", Compile(q))
}

func TestTimeFilterMacro(t *testing.T) {
	assert.Equal(t, "$__timeFilter(created_at)", TimeFilterMacro("created_at"))
}
