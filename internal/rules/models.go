package rules

import "strings"

// Operator represents a comparison operator used in an audience rule.
type Operator string

// Supported operators (string values for clean JSON serialization).
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpIn          Operator = "in"
	OpBetween     Operator = "between"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Attribute names a context property a rule reads.
type Attribute string

// Built-in attributes. AttrCustom is a sentinel: the property name lives in
// Rule.CustomAttribute.
const (
	AttrCity    Attribute = "city"
	AttrUserID  Attribute = "user_id"
	AttrTraffic Attribute = "traffic"
	AttrCustom  Attribute = "custom"
)

// Rule is a single attribute/operator/value condition.
// Rules inside one audience are combined with AND semantics.
// Value is always stored as a string; ParseValue gives its typed form.
type Rule struct {
	ID              string    `json:"id"`
	Attribute       Attribute `json:"attribute"`
	CustomAttribute string    `json:"customAttribute,omitempty"`
	Operator        Operator  `json:"operator"`
	Value           string    `json:"value"`
}

// Property returns the context key the rule is evaluated against.
// It is empty for a custom rule whose name has not been filled in yet.
func (r Rule) Property() string {
	if r.Attribute == AttrCustom {
		return strings.TrimSpace(r.CustomAttribute)
	}
	return string(r.Attribute)
}

// Attributes lists the selectable attributes in display order.
func Attributes() []Attribute {
	return []Attribute{AttrUserID, AttrCity, AttrTraffic, AttrCustom}
}

// Operators lists the supported operators in display order.
func Operators() []Operator {
	return []Operator{OpEquals, OpNotEquals, OpContains, OpIn, OpBetween, OpGreaterThan, OpLessThan}
}

// NormalizeOperator maps accepted spellings onto the canonical operator.
// Unknown operators are returned unchanged so validation can reject them.
func NormalizeOperator(op Operator) Operator {
	switch strings.ToLower(strings.TrimSpace(string(op))) {
	case "equals", "eq", "==":
		return OpEquals
	case "not_equals", "neq", "!=":
		return OpNotEquals
	case "contains":
		return OpContains
	case "in", "in_list":
		return OpIn
	case "between":
		return OpBetween
	case "greater_than", "gt", ">":
		return OpGreaterThan
	case "less_than", "lt", "<":
		return OpLessThan
	default:
		return op
	}
}
