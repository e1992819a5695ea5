package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by ValidateRule and ParseValue.
var (
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrInvalidValue     = errors.New("invalid value")
)

var validAttributes = map[Attribute]struct{}{
	AttrCity:    {},
	AttrUserID:  {},
	AttrTraffic: {},
	AttrCustom:  {},
}

var validOperators = map[Operator]struct{}{
	OpEquals:      {},
	OpNotEquals:   {},
	OpContains:    {},
	OpIn:          {},
	OpBetween:     {},
	OpGreaterThan: {},
	OpLessThan:    {},
}

// IsDraft reports whether the rule has no value yet. Draft rules are allowed to be
// stored while an audience is being edited; they never match.
func (r Rule) IsDraft() bool {
	return strings.TrimSpace(r.Value) == ""
}

// ValidateRule performs input-time validation of a rule.
// It is a pure function: it never mutates r and has no side effects.
// The operator must already be in canonical form (see NormalizeOperator).
func ValidateRule(r Rule) error {
	if _, ok := validAttributes[r.Attribute]; !ok {
		return fmt.Errorf("%w: %q is not supported", ErrInvalidAttribute, r.Attribute)
	}

	if _, ok := validOperators[r.Operator]; !ok {
		return fmt.Errorf("%w: %q is not supported", ErrInvalidOperator, r.Operator)
	}

	if r.Attribute != AttrCustom && r.CustomAttribute != "" {
		return fmt.Errorf("%w: customAttribute is only allowed with attribute %q", ErrInvalidAttribute, AttrCustom)
	}

	if r.IsDraft() {
		return nil
	}

	_, err := ParseValue(r.Operator, r.Value)
	return err
}
