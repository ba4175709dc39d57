package visualquery

// TimeFilterMacro returns the placeholder the execution layer replaces with the dashboard
// time range for column.
func TimeFilterMacro(column string) string {
	return "$__timeFilter(" + column + ")"
}

// applyTimeSeries augments an assembled statement with the time column. Each injection point
// is a separate step so that it can be exercised on its own.
func applyTimeSeries(s statement, timeColumn string, autoApplyTimeFilter bool) statement {
	s.selectItems = prependTimeSelect(s.selectItems, timeColumn)
	if autoApplyTimeFilter {
		s.where = prependTimeFilter(s.where, timeColumn)
	}
	if s.aggregations > 0 {
		s.groupBy = prependTimeGroup(s.groupBy, timeColumn)
	}
	s.orderBy = prependTimeOrder(s.orderBy, timeColumn)
	return s
}

// prependTimeSelect puts the time column first and drops it from the explicit columns.
// Selecting the time column alone is widened with the wildcard.
func prependTimeSelect(items []string, timeColumn string) []string {
	result := []string{timeColumn}
	for _, item := range items {
		if item != timeColumn {
			result = append(result, item)
		}
	}
	if len(result) == 1 {
		result = append(result, wildcard)
	}
	return result
}

func prependTimeFilter(conditions []string, timeColumn string) []string {
	return append([]string{TimeFilterMacro(timeColumn)}, conditions...)
}

func prependTimeGroup(groupBy []string, timeColumn string) []string {
	for _, column := range groupBy {
		if column == timeColumn {
			return groupBy
		}
	}
	return append([]string{timeColumn}, groupBy...)
}

func prependTimeOrder(orderBy []OrderByConfig, timeColumn string) []OrderByConfig {
	for _, order := range orderBy {
		if order.Column == timeColumn {
			return orderBy
		}
	}
	return append([]OrderByConfig{{Column: timeColumn, Direction: DirectionAscending}}, orderBy...)
}
