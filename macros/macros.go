// Package macros resolves the time placeholders found in compiled or hand-written Pinot SQL
// against the time range of the query being executed.
//
// Pinot time columns are stored as epoch milliseconds, so every macro renders milliseconds.
package macros

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultInterval = time.Minute

// TimeRange is the window a query is executed for.
type TimeRange struct {
	From time.Time
	To   time.Time
	// Interval is the suggested bucket width; a minute when zero.
	Interval time.Duration
}

// macroPattern matches $__name(args) and the argument-less $__interval_ms. Single-quoted
// literals are matched too so that macro-like text inside them is left alone.
var macroPattern = regexp.MustCompile(`'(?:[^']|'')*'|\$__(\w+)(?:\(([^()]*)\))?`)

type expander func(args []string, r TimeRange) (string, error)

var expanders = map[string]expander{
	"timeFilter": timeFilter,
	"timeFrom":   timeFrom,
	"timeTo":     timeTo,
	"timeGroup":  timeGroup,
}

// Expand replaces every macro in sql. Unknown macros, wrong argument counts and an empty time
// range are reported as errors.
func Expand(sql string, r TimeRange) (string, error) {
	if !containsMacro(sql) {
		return sql, nil
	}
	if r.From.IsZero() || r.To.IsZero() {
		return "", fmt.Errorf("time range is required to expand macros in: %s", sql)
	}
	if r.To.Before(r.From) {
		return "", fmt.Errorf("invalid time range: %s is after %s", r.From, r.To)
	}

	var expandErr error
	expanded := macroPattern.ReplaceAllStringFunc(sql, func(match string) string {
		if expandErr != nil || isLiteral(match) {
			return match
		}
		groups := macroPattern.FindStringSubmatch(match)
		name, rawArgs := groups[1], groups[2]
		hasParens := strings.HasSuffix(match, ")")

		if name == "interval_ms" && !hasParens {
			return strconv.FormatInt(interval(r).Milliseconds(), 10)
		}
		fn, ok := expanders[name]
		if !ok || !hasParens {
			expandErr = fmt.Errorf("unknown macro: %s", match)
			return match
		}
		result, err := fn(splitArgs(rawArgs), r)
		if err != nil {
			expandErr = fmt.Errorf("failed to expand %s: %w", match, err)
			return match
		}
		return result
	})
	if expandErr != nil {
		return "", expandErr
	}
	return expanded, nil
}

func containsMacro(sql string) bool {
	if !strings.Contains(sql, "$__") {
		return false
	}
	for _, match := range macroPattern.FindAllString(sql, -1) {
		if !isLiteral(match) {
			return true
		}
	}
	return false
}

func isLiteral(match string) bool {
	return strings.HasPrefix(match, "'")
}

func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	args := strings.Split(raw, ",")
	for i, arg := range args {
		args[i] = strings.TrimSpace(arg)
	}
	return args
}

func expectArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	for i, arg := range args {
		if arg == "" {
			return fmt.Errorf("argument %d is empty", i+1)
		}
	}
	return nil
}

func timeFilter(args []string, r TimeRange) (string, error) {
	if err := expectArgs(args, 1); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s >= %d AND %s <= %d", args[0], r.From.UnixMilli(), args[0], r.To.UnixMilli()), nil
}

func timeFrom(args []string, r TimeRange) (string, error) {
	if err := expectArgs(args, 0); err != nil {
		return "", err
	}
	return strconv.FormatInt(r.From.UnixMilli(), 10), nil
}

func timeTo(args []string, r TimeRange) (string, error) {
	if err := expectArgs(args, 0); err != nil {
		return "", err
	}
	return strconv.FormatInt(r.To.UnixMilli(), 10), nil
}

// timeGroup buckets an epoch millisecond column with DATETIMECONVERT. The bucket defaults to
// the query interval when omitted.
func timeGroup(args []string, r TimeRange) (string, error) {
	bucket := interval(r)
	switch len(args) {
	case 1:
	case 2:
		parsed, err := ParseInterval(strings.Trim(args[1], `'"`))
		if err != nil {
			return "", err
		}
		bucket = parsed
	default:
		return "", fmt.Errorf("expected 1 or 2 argument(s), got %d", len(args))
	}
	if args[0] == "" {
		return "", fmt.Errorf("argument 1 is empty")
	}
	return fmt.Sprintf(
		"DATETIMECONVERT(%s, '1:MILLISECONDS:EPOCH', '1:MILLISECONDS:EPOCH', '%s')",
		args[0], granularity(bucket),
	), nil
}

func interval(r TimeRange) time.Duration {
	if r.Interval <= 0 {
		return defaultInterval
	}
	return r.Interval
}

// granularity renders d in Pinot's "<size>:<unit>" notation using the largest unit that
// divides it evenly.
func granularity(d time.Duration) string {
	units := []struct {
		name string
		size time.Duration
	}{
		{"DAYS", 24 * time.Hour},
		{"HOURS", time.Hour},
		{"MINUTES", time.Minute},
		{"SECONDS", time.Second},
	}
	for _, unit := range units {
		if d >= unit.size && d%unit.size == 0 {
			return fmt.Sprintf("%d:%s", d/unit.size, unit.name)
		}
	}
	if ms := d.Milliseconds(); ms > 0 {
		return fmt.Sprintf("%d:MILLISECONDS", ms)
	}
	return "1:MILLISECONDS"
}

// ParseInterval parses Go durations and additionally whole days ("1d", "7d").
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid interval: %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval: %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive: %q", s)
	}
	return d, nil
}
