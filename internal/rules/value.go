package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the shape of a parsed rule value.
type Kind int

const (
	KindScalar Kind = iota + 1
	KindList
	KindRange
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindRange:
		return "range"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is the typed form of Rule.Value, keyed by operator.
// Only the fields matching Kind are meaningful.
type Value struct {
	Kind   Kind
	Scalar string
	List   []string
	Low    float64
	High   float64
	Number float64
}

// ParseValue converts a raw rule value into its typed form for the given operator.
// The operator is normalized first, so the short "gt"/"lt" spellings are accepted.
func ParseValue(op Operator, raw string) (Value, error) {
	switch NormalizeOperator(op) {
	case OpEquals, OpNotEquals, OpContains:
		return Value{Kind: KindScalar, Scalar: raw}, nil

	case OpIn:
		items := SplitList(raw)
		if len(items) == 0 {
			return Value{}, fmt.Errorf("%w: %q needs at least one comma separated item", ErrInvalidValue, OpIn)
		}
		return Value{Kind: KindList, List: items}, nil

	case OpBetween:
		low, high, err := parseRange(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindRange, Low: low, High: high}, nil

	case OpGreaterThan, OpLessThan:
		n, err := ParseNumber(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
		}
		return Value{Kind: KindNumber, Number: n}, nil

	default:
		return Value{}, fmt.Errorf("%w: %q is not supported", ErrInvalidOperator, op)
	}
}

// SplitList splits a comma separated list, trimming items and dropping empties.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// ParseNumber parses a trimmed decimal number.
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseRange(raw string) (float64, float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q must be \"low,high\"", ErrInvalidValue, raw)
	}
	low, err := ParseNumber(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: range low bound %q is not a number", ErrInvalidValue, parts[0])
	}
	high, err := ParseNumber(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: range high bound %q is not a number", ErrInvalidValue, parts[1])
	}
	if low > high {
		return 0, 0, fmt.Errorf("%w: range low bound %v exceeds high bound %v", ErrInvalidValue, low, high)
	}
	return low, high, nil
}
