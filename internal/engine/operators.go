package engine

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/TimurManjosov/apollo/internal/rules"
)

// OperatorHandler evaluates one rule operator against the rendered context value.
type OperatorHandler interface {
	Check(actual string, want rules.Value) bool
}

var operatorHandlers = map[rules.Operator]OperatorHandler{
	rules.OpEquals:      equalsHandler{},
	rules.OpNotEquals:   notEqualsHandler{},
	rules.OpContains:    containsHandler{},
	rules.OpIn:          inHandler{},
	rules.OpBetween:     betweenHandler{},
	rules.OpGreaterThan: numericCompareHandler{cmp: func(a, b float64) bool { return a > b }},
	rules.OpLessThan:    numericCompareHandler{cmp: func(a, b float64) bool { return a < b }},
}

func getOperatorHandler(op rules.Operator) (OperatorHandler, bool) {
	h, ok := operatorHandlers[rules.NormalizeOperator(op)]
	return h, ok
}

type equalsHandler struct{}

func (equalsHandler) Check(actual string, want rules.Value) bool {
	return want.Kind == rules.KindScalar && actual == want.Scalar
}

type notEqualsHandler struct{}

func (notEqualsHandler) Check(actual string, want rules.Value) bool {
	return want.Kind == rules.KindScalar && actual != want.Scalar
}

type containsHandler struct{}

func (containsHandler) Check(actual string, want rules.Value) bool {
	return want.Kind == rules.KindScalar && strings.Contains(actual, want.Scalar)
}

type inHandler struct{}

func (inHandler) Check(actual string, want rules.Value) bool {
	if want.Kind != rules.KindList {
		return false
	}
	actual = strings.TrimSpace(actual)
	for _, item := range want.List {
		if item == actual {
			return true
		}
	}
	return false
}

type betweenHandler struct{}

func (betweenHandler) Check(actual string, want rules.Value) bool {
	if want.Kind != rules.KindRange {
		return false
	}
	n, err := rules.ParseNumber(actual)
	if err != nil {
		return false
	}
	return n >= want.Low && n <= want.High
}

type numericCompareHandler struct {
	cmp func(a, b float64) bool
}

func (h numericCompareHandler) Check(actual string, want rules.Value) bool {
	if want.Kind != rules.KindNumber {
		return false
	}
	n, err := rules.ParseNumber(actual)
	if err != nil {
		return false
	}
	return h.cmp(n, want.Number)
}

// FormatValue renders a context value the way it would appear in a form field.
// Integral floats lose their fraction, so 7 and 7.0 both become "7". The bool
// is false for unsupported types.
func FormatValue(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case bool:
		return strconv.FormatBool(n), true
	case int:
		return strconv.Itoa(n), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case json.Number:
		if !strings.ContainsAny(string(n), ".eE") {
			return n.String(), true
		}
		if f, err := n.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return n.String(), true
	default:
		return "", false
	}
}
