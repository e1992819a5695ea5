package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/TimurManjosov/apollo/internal/assist"
	"github.com/TimurManjosov/apollo/internal/rules"
	"github.com/TimurManjosov/apollo/internal/toggle"
	"github.com/TimurManjosov/apollo/internal/validation"
)

// CreateParams holds the two inputs of the create form.
type CreateParams struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Patch holds the editable toggle fields. Nil fields are left untouched.
type Patch struct {
	Name        *string        `json:"name,omitempty"`
	Key         *string        `json:"key,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *toggle.Status `json:"status,omitempty"`
}

// Create adds a disabled toggle with no audiences at the front of the
// collection and selects it. The key is normalized here and nowhere else.
func (c *Console) Create(ctx context.Context, p CreateParams) (toggle.Toggle, error) {
	name := strings.TrimSpace(p.Name)
	key := toggle.NormalizeKey(strings.TrimSpace(p.Key))

	if res := validation.ValidateToggle(validation.ToggleParams{Name: name, Key: key}); !res.Valid {
		return toggle.Toggle{}, &InputError{Fields: res.Errors}
	}

	// The model call can take seconds; keep it outside the lock.
	description := c.describe(ctx, name, key)

	today := c.today()
	created := toggle.Toggle{
		ID:          toggle.NewID(),
		Key:         key,
		Name:        name,
		Description: description,
		Status:      toggle.StatusDisabled,
		Audiences:   []toggle.Audience{},
		CreatedAt:   today,
		UpdatedAt:   today,
	}

	err := c.mutate(ctx, "create", func(ts []toggle.Toggle) ([]toggle.Toggle, error) {
		return append([]toggle.Toggle{created}, ts...), nil
	})
	if err != nil {
		return toggle.Toggle{}, err
	}

	c.mu.Lock()
	c.activeID = created.ID
	c.mu.Unlock()

	c.log.Info().Str("id", created.ID).Str("key", created.Key).Msg("toggle created")
	return created.Clone(), nil
}

// Update applies the set fields of p. The key is stored verbatim.
func (c *Console) Update(ctx context.Context, id string, p Patch) (toggle.Toggle, error) {
	res := validation.NewValidationResult()
	if p.Name != nil {
		res.Merge(validation.ValidateName("name", *p.Name))
	}
	if p.Key != nil {
		res.Merge(validation.ValidateKey(*p.Key))
	}
	if p.Description != nil {
		res.Merge(validation.ValidateDescription(*p.Description))
	}
	if p.Status != nil {
		if _, err := toggle.ParseStatus(string(*p.Status)); err != nil {
			res.AddError("status", err.Error())
		}
	}
	if !res.Valid {
		return toggle.Toggle{}, &InputError{Fields: res.Errors}
	}

	var updated toggle.Toggle
	err := c.mutate(ctx, "update", func(ts []toggle.Toggle) ([]toggle.Toggle, error) {
		t, err := find(ts, id)
		if err != nil {
			return nil, err
		}
		if p.Name != nil {
			t.Name = strings.TrimSpace(*p.Name)
		}
		if p.Key != nil {
			t.Key = *p.Key
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Status != nil {
			t.Status, _ = toggle.ParseStatus(string(*p.Status))
		}
		t.UpdatedAt = c.today()
		updated = t.Clone()
		return ts, nil
	})
	return updated, err
}

// SetStatus enables or disables a toggle.
func (c *Console) SetStatus(ctx context.Context, id string, status toggle.Status) (toggle.Toggle, error) {
	return c.Update(ctx, id, Patch{Status: &status})
}

// Delete removes a toggle. When it was the active one the first remaining
// toggle becomes active. Asking for confirmation is the caller's job.
func (c *Console) Delete(ctx context.Context, id string) error {
	err := c.mutate(ctx, "delete", func(ts []toggle.Toggle) ([]toggle.Toggle, error) {
		i := indexOf(ts, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrToggleNotFound, id)
		}
		return append(ts[:i], ts[i+1:]...), nil
	})
	if err == nil {
		c.log.Info().Str("id", id).Msg("toggle deleted")
	}
	return err
}

// Regenerate replaces the description with a freshly generated one.
func (c *Console) Regenerate(ctx context.Context, id string) (toggle.Toggle, error) {
	current, err := c.Get(id)
	if err != nil {
		return toggle.Toggle{}, err
	}
	description := c.describe(ctx, current.Name, current.Key)
	return c.Update(ctx, id, Patch{Description: &description})
}

// Suggest returns rule suggestions for the toggle's name.
func (c *Console) Suggest(ctx context.Context, id string) ([]assist.Suggestion, error) {
	t, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	if c.opts.Suggester == nil {
		return []assist.Suggestion{}, nil
	}
	return c.opts.Suggester.Suggest(ctx, t.Name), nil
}

// Export returns the download name and pretty JSON of one toggle.
func (c *Console) Export(id string) (string, []byte, error) {
	t, err := c.Get(id)
	if err != nil {
		return "", nil, err
	}
	body, err := toggle.Export(t)
	if err != nil {
		return "", nil, err
	}
	return toggle.ExportFileName(t), body, nil
}

// Import stores an exported toggle. A toggle with the same id is replaced in
// place; otherwise the import is prepended. Operator aliases are normalized
// and every rule must validate.
func (c *Console) Import(ctx context.Context, body []byte) (toggle.Toggle, error) {
	t, err := toggle.ParseExport(body)
	if err != nil {
		return toggle.Toggle{}, &InputError{Err: err}
	}
	for ai := range t.Audiences {
		a := &t.Audiences[ai]
		if a.ID == "" {
			a.ID = toggle.NewID()
		}
		for ri := range a.Rules {
			r := &a.Rules[ri]
			if r.ID == "" {
				r.ID = toggle.NewID()
			}
			r.Operator = rules.NormalizeOperator(r.Operator)
			if err := rules.ValidateRule(*r); err != nil {
				return toggle.Toggle{}, &InputError{
					Fields: map[string]string{fmt.Sprintf("audiences[%d].rules[%d]", ai, ri): err.Error()},
					Err:    err,
				}
			}
		}
	}

	err = c.mutate(ctx, "import", func(ts []toggle.Toggle) ([]toggle.Toggle, error) {
		if i := indexOf(ts, t.ID); i >= 0 {
			ts[i] = t.Clone()
			return ts, nil
		}
		return append([]toggle.Toggle{t.Clone()}, ts...), nil
	})
	if err != nil {
		return toggle.Toggle{}, err
	}
	c.log.Info().Str("id", t.ID).Str("key", t.Key).Msg("toggle imported")
	return t, nil
}

func (c *Console) describe(ctx context.Context, name, key string) string {
	if c.opts.Describer == nil {
		return ""
	}
	// generated text is clamped so it always passes ValidateDescription
	return validation.ClampDescription(c.opts.Describer.Describe(ctx, name, key))
}
