package engine

import (
	"github.com/TimurManjosov/apollo/internal/rules"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

// Evaluate decides whether ctx is admitted by t.
//
// A disabled toggle admits nobody. Otherwise audiences are OR-combined and the
// rules inside one audience are AND-combined. An audience with no rules never
// matches, so a toggle without audiences admits nobody either.
func Evaluate(t *toggle.Toggle, ctx Context) Result {
	return evaluate(t, ctx, false)
}

// Explain is Evaluate plus a per-audience trace. Every audience is visited even
// after the first match.
func Explain(t *toggle.Toggle, ctx Context) Result {
	return evaluate(t, ctx, true)
}

// Allowed is shorthand for Evaluate(t, ctx).Allowed.
func Allowed(t *toggle.Toggle, ctx Context) bool {
	return Evaluate(t, ctx).Allowed
}

func evaluate(t *toggle.Toggle, ctx Context, explain bool) Result {
	if t == nil {
		return Result{Reason: ReasonNotFound}
	}
	if !t.Enabled() {
		return Result{Reason: ReasonDisabled}
	}

	result := Result{Reason: ReasonNoMatch}
	for _, a := range t.Audiences {
		matched, failed := matchAudience(a, ctx)
		if explain {
			result.Audiences = append(result.Audiences, AudienceTrace{
				ID:         a.ID,
				Name:       a.Name,
				Matched:    matched,
				FailedRule: failed,
			})
		}
		if matched && !result.Allowed {
			result.Allowed = true
			result.Reason = ReasonAudienceMatch
			result.MatchedAudience = a.ID
			if !explain {
				return result
			}
		}
	}
	return result
}

// matchAudience returns whether every rule matches, and otherwise the id of the
// first rule that did not.
func matchAudience(a toggle.Audience, ctx Context) (bool, string) {
	if len(a.Rules) == 0 {
		return false, ""
	}
	for _, r := range a.Rules {
		if !MatchRule(r, ctx) {
			return false, r.ID
		}
	}
	return true, ""
}

// MatchRule evaluates a single rule. It is total: a missing attribute, an
// unknown operator or a malformed value all yield false.
func MatchRule(r rules.Rule, ctx Context) bool {
	if r.IsDraft() {
		return false
	}
	prop := r.Property()
	if prop == "" {
		return false
	}
	raw, ok := ctx[prop]
	if !ok || raw == nil {
		return false
	}
	actual, ok := FormatValue(raw)
	if !ok {
		return false
	}

	handler, ok := getOperatorHandler(r.Operator)
	if !ok {
		return false
	}
	want, err := rules.ParseValue(r.Operator, r.Value)
	if err != nil {
		return false
	}
	return handler.Check(actual, want)
}
