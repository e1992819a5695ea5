// Package toggle defines the feature toggle record and its audience tree.
//
// A Toggle owns an ordered list of Audiences, and each Audience owns an ordered
// list of rules. Audiences under one toggle are OR-combined; rules inside one
// audience are AND-combined (see internal/engine).
package toggle

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TimurManjosov/apollo/internal/rules"
)

// DateLayout is the calendar-date format used for CreatedAt and UpdatedAt.
const DateLayout = "2006-01-02"

// Status gates evaluation of a toggle.
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// ParseStatus accepts "enabled" or "disabled" (case-insensitive).
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusEnabled:
		return StatusEnabled, nil
	case StatusDisabled:
		return StatusDisabled, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be %q or %q", s, StatusEnabled, StatusDisabled)
	}
}

// Audience is a named OR-branch of targeting criteria.
type Audience struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Rules []rules.Rule `json:"rules"`
}

// Toggle is a named feature flag with a status and targeting audiences.
type Toggle struct {
	ID          string     `json:"id"`
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Audiences   []Audience `json:"audiences"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

// Enabled reports whether the toggle status is enabled.
func (t *Toggle) Enabled() bool {
	return t.Status == StatusEnabled
}

// Audience returns a pointer to the audience with the given id, or nil.
func (t *Toggle) Audience(id string) *Audience {
	for i := range t.Audiences {
		if t.Audiences[i].ID == id {
			return &t.Audiences[i]
		}
	}
	return nil
}

// Rule returns a pointer to the rule with the given id, or nil.
func (a *Audience) Rule(id string) *rules.Rule {
	for i := range a.Rules {
		if a.Rules[i].ID == id {
			return &a.Rules[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Nil slices are normalized to empty ones so the
// JSON form always carries arrays.
func (t Toggle) Clone() Toggle {
	out := t
	out.Audiences = make([]Audience, len(t.Audiences))
	for i, a := range t.Audiences {
		out.Audiences[i] = a.Clone()
	}
	return out
}

// Clone returns a deep copy of the audience.
func (a Audience) Clone() Audience {
	out := a
	out.Rules = make([]rules.Rule, len(a.Rules))
	copy(out.Rules, a.Rules)
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeKey lowercases s and replaces every whitespace run with "_".
// It is applied once, when a toggle is created.
func NormalizeKey(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(s), "_")
}

// NewID returns a fresh random identifier (UUID v4).
func NewID() string {
	return uuid.NewString()
}

// FormatDate renders t as a calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
