package visualquery

import (
	"regexp"
	"strings"
)

// numericLiteral matches the numbers that can be emitted unquoted: an optional sign, digits
// with an optional fraction (or a bare fraction) and an optional exponent.
var numericLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// formatFilter renders one WHERE condition. Filters without a column or an operator are
// skipped.
func formatFilter(f FilterCondition) (string, bool) {
	if f.Column == "" || f.Operator == "" {
		return "", false
	}
	op := string(f.Operator)
	switch f.Operator.kind() {
	case kindNullCheck:
		return f.Column + " " + op, true
	case kindList:
		return f.Column + " " + op + " (" + formatList(f.Value) + ")", true
	case kindPattern:
		return f.Column + " " + op + " " + quote(f.Value), true
	default:
		return f.Column + " " + op + " " + formatScalar(f.Value), true
	}
}

// formatList renders the inside of an IN list. Values that already carry quotes are trusted
// as typed; otherwise every comma separated element is quoted.
func formatList(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.Contains(trimmed, "'") {
		return trimmed
	}
	if !strings.Contains(trimmed, ",") {
		return quote(trimmed)
	}
	parts := strings.Split(trimmed, ",")
	for i, part := range parts {
		parts[i] = quote(strings.TrimSpace(part))
	}
	return strings.Join(parts, ", ")
}

// formatScalar leaves numbers unquoted and quotes everything else as typed.
// Numeric-looking strings such as zip codes are therefore compared as numbers.
func formatScalar(value string) string {
	if trimmed := strings.TrimSpace(value); isNumeric(trimmed) {
		return trimmed
	}
	return quote(value)
}

func isNumeric(value string) bool {
	return value != "" && numericLiteral.MatchString(value)
}

func quote(value string) string {
	return "'" + value + "'"
}
