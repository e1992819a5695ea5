package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TimurManjosov/apollo/internal/i18n"
	"github.com/TimurManjosov/apollo/internal/rules"
	"github.com/TimurManjosov/apollo/internal/toggle"
	"github.com/TimurManjosov/apollo/internal/validation"
)

// RulePatch holds the editable rule fields. Nil fields are left untouched.
type RulePatch struct {
	Attribute       *rules.Attribute `json:"attribute,omitempty"`
	CustomAttribute *string          `json:"customAttribute,omitempty"`
	Operator        *rules.Operator  `json:"operator,omitempty"`
	Value           *string          `json:"value,omitempty"`
}

// AddAudience appends an audience with no rules. A blank name gets the
// localized default.
func (c *Console) AddAudience(ctx context.Context, id, name string) (toggle.Audience, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = i18n.Text(c.opts.Lang, i18n.DefaultAudienceName)
	}
	if res := validation.ValidateName("name", name); !res.Valid {
		return toggle.Audience{}, &InputError{Fields: res.Errors}
	}

	created := toggle.Audience{ID: toggle.NewID(), Name: name, Rules: []rules.Rule{}}
	err := c.mutate(ctx, "add_audience", func(ts []toggle.Toggle) ([]toggle.Toggle, error) {
		t, err := find(ts, id)
		if err != nil {
			return nil, err
		}
		t.Audiences = append(t.Audiences, created)
		t.UpdatedAt = c.today()
		return ts, nil
	})
	if err != nil {
		return toggle.Audience{}, err
	}
	return created, nil
}

// RenameAudience changes an audience's name.
func (c *Console) RenameAudience(ctx context.Context, id, audienceID, name string) (toggle.Audience, error) {
	name = strings.TrimSpace(name)
	if res := validation.ValidateName("name", name); !res.Valid {
		return toggle.Audience{}, &InputError{Fields: res.Errors}
	}

	var renamed toggle.Audience
	err := c.editAudience(ctx, "rename_audience", id, audienceID, func(t *toggle.Toggle, a *toggle.Audience) error {
		a.Name = name
		renamed = a.Clone()
		return nil
	})
	return renamed, err
}

// DeleteAudience removes an audience and its rules without confirmation.
func (c *Console) DeleteAudience(ctx context.Context, id, audienceID string) error {
	return c.mutate(ctx, "delete_audience", func(ts []toggle.Toggle) ([]toggle.Toggle, error) {
		t, err := find(ts, id)
		if err != nil {
			return nil, err
		}
		for i := range t.Audiences {
			if t.Audiences[i].ID == audienceID {
				t.Audiences = append(t.Audiences[:i], t.Audiences[i+1:]...)
				t.UpdatedAt = c.today()
				return ts, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrAudienceNotFound, audienceID)
	})
}

// AddRule appends a draft rule "user_id equals <empty>" to an audience.
func (c *Console) AddRule(ctx context.Context, id, audienceID string) (rules.Rule, error) {
	created := rules.Rule{
		ID:        toggle.NewID(),
		Attribute: rules.AttrUserID,
		Operator:  rules.OpEquals,
		Value:     "",
	}
	err := c.editAudience(ctx, "add_rule", id, audienceID, func(t *toggle.Toggle, a *toggle.Audience) error {
		a.Rules = append(a.Rules, created)
		return nil
	})
	if err != nil {
		return rules.Rule{}, err
	}
	return created, nil
}

// UpdateRule applies p to a rule and validates the result. Changing the
// attribute clears the custom attribute name unless the new attribute is
// custom and p names one.
func (c *Console) UpdateRule(ctx context.Context, id, audienceID, ruleID string, p RulePatch) (rules.Rule, error) {
	if p.Value != nil {
		if res := validation.ValidateRuleValue(*p.Value); !res.Valid {
			return rules.Rule{}, &InputError{Fields: res.Errors}
		}
	}

	var updated rules.Rule
	err := c.editAudience(ctx, "update_rule", id, audienceID, func(t *toggle.Toggle, a *toggle.Audience) error {
		r := a.Rule(ruleID)
		if r == nil {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
		}
		next := *r
		if p.Attribute != nil && *p.Attribute != next.Attribute {
			next.Attribute = *p.Attribute
			next.CustomAttribute = ""
		}
		if p.CustomAttribute != nil {
			next.CustomAttribute = strings.TrimSpace(*p.CustomAttribute)
		}
		if p.Operator != nil {
			next.Operator = rules.NormalizeOperator(*p.Operator)
		}
		if p.Value != nil {
			next.Value = *p.Value
		}
		if err := rules.ValidateRule(next); err != nil {
			return &InputError{Fields: map[string]string{ruleField(err): err.Error()}, Err: err}
		}
		*r = next
		updated = next
		return nil
	})
	return updated, err
}

// DeleteRule removes a rule without confirmation.
func (c *Console) DeleteRule(ctx context.Context, id, audienceID, ruleID string) error {
	return c.editAudience(ctx, "delete_rule", id, audienceID, func(t *toggle.Toggle, a *toggle.Audience) error {
		for i := range a.Rules {
			if a.Rules[i].ID == ruleID {
				a.Rules = append(a.Rules[:i], a.Rules[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
	})
}

// editAudience runs fn on one audience and re-stamps the owning toggle.
func (c *Console) editAudience(ctx context.Context, op, id, audienceID string, fn func(*toggle.Toggle, *toggle.Audience) error) error {
	return c.mutate(ctx, op, func(ts []toggle.Toggle) ([]toggle.Toggle, error) {
		t, err := find(ts, id)
		if err != nil {
			return nil, err
		}
		a := t.Audience(audienceID)
		if a == nil {
			return nil, fmt.Errorf("%w: %s", ErrAudienceNotFound, audienceID)
		}
		if err := fn(t, a); err != nil {
			return nil, err
		}
		t.UpdatedAt = c.today()
		return ts, nil
	})
}

func ruleField(err error) string {
	switch {
	case errors.Is(err, rules.ErrInvalidAttribute):
		return "attribute"
	case errors.Is(err, rules.ErrInvalidOperator):
		return "operator"
	default:
		return "value"
	}
}
