package visualquery

// Operator is the comparison token of a filter. The twelve tokens below form the vocabulary
// editing surfaces offer; any other token is compiled as a plain binary operator.
type Operator string

const (
	OperatorEqual          Operator = "="
	OperatorNotEqual       Operator = "!="
	OperatorGreater        Operator = ">"
	OperatorGreaterOrEqual Operator = ">="
	OperatorLess           Operator = "<"
	OperatorLessOrEqual    Operator = "<="
	OperatorLike           Operator = "LIKE"
	OperatorNotLike        Operator = "NOT LIKE"
	OperatorIn             Operator = "IN"
	OperatorNotIn          Operator = "NOT IN"
	OperatorIsNull         Operator = "IS NULL"
	OperatorIsNotNull      Operator = "IS NOT NULL"
)

// operatorKind selects how the value of a filter is formatted.
type operatorKind uint8

const (
	kindBinary operatorKind = iota
	kindNullCheck
	kindList
	kindPattern
)

func (op Operator) kind() operatorKind {
	switch op {
	case OperatorIsNull, OperatorIsNotNull:
		return kindNullCheck
	case OperatorIn, OperatorNotIn:
		return kindList
	case OperatorLike, OperatorNotLike:
		return kindPattern
	case OperatorEqual, OperatorNotEqual,
		OperatorGreater, OperatorGreaterOrEqual,
		OperatorLess, OperatorLessOrEqual:
		return kindBinary
	default:
		return kindBinary
	}
}

// IsKnown reports whether op is one of the twelve operators of the vocabulary.
func (op Operator) IsKnown() bool {
	for _, known := range operators {
		if op == known {
			return true
		}
	}
	return false
}

// NeedsValue reports whether filters using op read their value.
func (op Operator) NeedsValue() bool {
	return op.kind() != kindNullCheck
}

var operators = []Operator{
	OperatorEqual,
	OperatorNotEqual,
	OperatorGreater,
	OperatorGreaterOrEqual,
	OperatorLess,
	OperatorLessOrEqual,
	OperatorLike,
	OperatorNotLike,
	OperatorIn,
	OperatorNotIn,
	OperatorIsNull,
	OperatorIsNotNull,
}

// Operators returns the operator vocabulary in menu order.
func Operators() []Operator {
	return append([]Operator(nil), operators...)
}

var aggregateFunctions = []string{
	"COUNT",
	"SUM",
	"AVG",
	"MIN",
	"MAX",
	"DISTINCTCOUNT",
	"DISTINCTCOUNTHLL",
	"PERCENTILE50",
	"PERCENTILE90",
	"PERCENTILE95",
	"PERCENTILE99",
}

// AggregateFunctions returns the aggregate functions offered by the editor menu.
// Compile accepts any function name.
func AggregateFunctions() []string {
	return append([]string(nil), aggregateFunctions...)
}
