package visualquery

import (
	"fmt"
	"strings"
)

const wildcard = "*"

// statement accumulates clause fragments. A clause whose fragment list is empty is left out
// when rendering, except SELECT which collapses to the wildcard.
type statement struct {
	selectItems  []string
	from         string
	where        []string
	groupBy      []string
	orderBy      []OrderByConfig
	limit        int
	aggregations int
}

// Compile renders q as a single-line Pinot SQL statement. It returns the empty string when no
// table is set and never fails: filters without column or operator, ORDER BY entries without
// column and non-positive limits are left out.
func Compile(q VisualQuery) string {
	if q.Table == "" {
		return ""
	}
	stmt := buildStatement(q)
	if timeColumn, ok := q.TimeColumn(); ok {
		stmt = applyTimeSeries(stmt, timeColumn, q.TimeSeries.AutoApplyTimeFilter)
	}
	return stmt.render()
}

func buildStatement(q VisualQuery) statement {
	stmt := statement{from: q.Table}
	for _, column := range q.Columns {
		if column != "" {
			stmt.selectItems = append(stmt.selectItems, column)
		}
	}
	for _, agg := range q.Aggregations {
		if item, ok := formatAggregation(agg); ok {
			stmt.selectItems = append(stmt.selectItems, item)
			stmt.aggregations++
		}
	}
	for _, filter := range q.Filters {
		if condition, ok := formatFilter(filter); ok {
			stmt.where = append(stmt.where, condition)
		}
	}
	for _, column := range q.GroupBy {
		if column != "" {
			stmt.groupBy = append(stmt.groupBy, column)
		}
	}
	for _, order := range q.OrderBy {
		if order.Column != "" {
			stmt.orderBy = append(stmt.orderBy, order)
		}
	}
	if q.Limit != nil && *q.Limit > 0 {
		stmt.limit = *q.Limit
	}
	return stmt
}

func formatAggregation(agg AggregationConfig) (string, bool) {
	fn := strings.TrimSpace(agg.Func)
	if fn == "" {
		return "", false
	}
	column := strings.TrimSpace(agg.Column)
	if column == "" {
		column = wildcard
	}
	item := fmt.Sprintf("%s(%s)", fn, column)
	if alias := strings.TrimSpace(agg.Alias); alias != "" {
		item += " AS " + alias
	}
	return item, true
}

func (s statement) render() string {
	selectItems := s.selectItems
	if len(selectItems) == 0 {
		selectItems = []string{wildcard}
	}
	clauses := []string{
		"SELECT " + strings.Join(selectItems, ", "),
		"FROM " + s.from,
	}
	if len(s.where) > 0 {
		clauses = append(clauses, "WHERE "+strings.Join(s.where, " AND "))
	}
	if len(s.groupBy) > 0 {
		clauses = append(clauses, "GROUP BY "+strings.Join(s.groupBy, ", "))
	}
	if len(s.orderBy) > 0 {
		items := make([]string, 0, len(s.orderBy))
		for _, order := range s.orderBy {
			items = append(items, order.Column+" "+order.Direction.String())
		}
		clauses = append(clauses, "ORDER BY "+strings.Join(items, ", "))
	}
	if s.limit > 0 {
		clauses = append(clauses, fmt.Sprintf("LIMIT %d", s.limit))
	}
	return strings.Join(clauses, " ")
}
