// Package console owns the toggle collection and every edit made to it.
//
// Each mutation works on a copy of the collection, saves the copy through the
// configured store and only then swaps it in, so a failed save leaves the
// in-memory state untouched. Successful saves publish a new snapshot.
package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/apollo/internal/assist"
	"github.com/TimurManjosov/apollo/internal/i18n"
	"github.com/TimurManjosov/apollo/internal/snapshot"
	"github.com/TimurManjosov/apollo/internal/store"
	"github.com/TimurManjosov/apollo/internal/telemetry"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

var (
	ErrToggleNotFound   = errors.New("toggle not found")
	ErrAudienceNotFound = errors.New("audience not found")
	ErrRuleNotFound     = errors.New("rule not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// InputError carries per-field messages for a rejected edit. It matches
// ErrInvalidInput and, when set, the underlying cause.
type InputError struct {
	Fields map[string]string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrInvalidInput, e.Err)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *InputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

func fieldError(field, msg string) error {
	return &InputError{Fields: map[string]string{field: msg}}
}

// Describer drafts toggle descriptions. It never fails.
type Describer interface {
	Describe(ctx context.Context, name, key string) string
}

// Suggester proposes targeting rules. It never fails.
type Suggester interface {
	Suggest(ctx context.Context, name string) []assist.Suggestion
}

// Options configures a Console.
type Options struct {
	Lang      i18n.Lang
	Describer Describer
	Suggester Suggester
	Snapshots *snapshot.Holder
	Logger    zerolog.Logger

	// TrafficBucketing derives a "traffic" value from user_id during Evaluate
	// when the caller did not supply one.
	TrafficBucketing bool
	TrafficSalt      string

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Summary is the list view of a toggle.
type Summary struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Name      string        `json:"name"`
	Status    toggle.Status `json:"status"`
	Audiences int           `json:"audiences"`
	UpdatedAt string        `json:"updatedAt"`
}

// Console is the single owner of the toggle collection.
type Console struct {
	mu       sync.RWMutex
	store    store.Store
	toggles  []toggle.Toggle
	activeID string

	opts Options
	log  zerolog.Logger
}

// Open loads the collection from st. When st holds nothing yet, the sample
// collection is seeded and saved. Any other load failure is returned so an
// unreadable store is never overwritten.
func Open(ctx context.Context, st store.Store, opts Options) (*Console, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lang == "" {
		opts.Lang = i18n.EN
	}
	if opts.Snapshots == nil {
		opts.Snapshots = snapshot.NewHolder()
	}

	c := &Console{store: st, opts: opts, log: opts.Logger}

	toggles, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		toggles = toggle.Seed(c.today())
		if err := st.Save(ctx, toggles); err != nil {
			return nil, fmt.Errorf("save seed collection: %w", err)
		}
		c.log.Info().Int("toggles", len(toggles)).Msg("store empty, seeded sample collection")
	case err != nil:
		return nil, fmt.Errorf("load collection: %w", err)
	}

	c.toggles = toggles
	if len(toggles) > 0 {
		c.activeID = toggles[0].ID
	}
	c.publish()
	return c, nil
}

// Snapshots returns the holder updated after every save.
func (c *Console) Snapshots() *snapshot.Holder {
	return c.opts.Snapshots
}

// Lang returns the language used for generated strings.
func (c *Console) Lang() i18n.Lang {
	return c.opts.Lang
}

// List returns summaries in collection order, filtered case-insensitively on
// name or key. An empty query matches everything.
func (c *Console) List(query string) []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Summary, 0, len(c.toggles))
	for _, t := range c.toggles {
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Key), q) {
			continue
		}
		out = append(out, Summary{
			ID:        t.ID,
			Key:       t.Key,
			Name:      t.Name,
			Status:    t.Status,
			Audiences: len(t.Audiences),
			UpdatedAt: t.UpdatedAt,
		})
	}
	return out
}

// All returns a deep copy of the whole collection.
func (c *Console) All() []toggle.Toggle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.toggles)
}

// Get returns a copy of the toggle with id.
func (c *Console) Get(id string) (toggle.Toggle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := indexOf(c.toggles, id)
	if i < 0 {
		return toggle.Toggle{}, fmt.Errorf("%w: %s", ErrToggleNotFound, id)
	}
	return c.toggles[i].Clone(), nil
}

// GetByKey returns the first toggle whose key equals key. Keys are not unique.
func (c *Console) GetByKey(key string) (toggle.Toggle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.toggles {
		if t.Key == key {
			return t.Clone(), nil
		}
	}
	return toggle.Toggle{}, fmt.Errorf("%w: key %s", ErrToggleNotFound, key)
}

// Lookup resolves ref as an id first and a key second.
func (c *Console) Lookup(ref string) (toggle.Toggle, error) {
	if t, err := c.Get(ref); err == nil {
		return t, nil
	}
	return c.GetByKey(ref)
}

// Active returns the selected toggle, if any.
func (c *Console) Active() (toggle.Toggle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := indexOf(c.toggles, c.activeID)
	if i < 0 {
		return toggle.Toggle{}, false
	}
	return c.toggles[i].Clone(), true
}

// Select makes id the active toggle. Selection is not persisted.
func (c *Console) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if indexOf(c.toggles, id) < 0 {
		return fmt.Errorf("%w: %s", ErrToggleNotFound, id)
	}
	c.activeID = id
	return nil
}

// mutate applies fn to a copy of the collection, saves it and swaps it in.
// fn must not call back into the console.
func (c *Console) mutate(ctx context.Context, op string, fn func([]toggle.Toggle) ([]toggle.Toggle, error)) error {
	ctx, span := telemetry.StartSpan(ctx, "console."+op)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(cloneAll(c.toggles))
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, next); err != nil {
		span.RecordError(err)
		c.log.Error().Err(err).Str("op", op).Msg("save failed, change discarded")
		return fmt.Errorf("save collection: %w", err)
	}

	c.toggles = next
	if indexOf(c.toggles, c.activeID) < 0 {
		c.activeID = ""
		if len(c.toggles) > 0 {
			c.activeID = c.toggles[0].ID
		}
	}
	c.publish()
	c.log.Debug().Str("op", op).Int("toggles", len(next)).Msg("collection saved")
	return nil
}

// publish must be called with c.mu held (or before c is shared).
func (c *Console) publish() {
	c.opts.Snapshots.Update(snapshot.Build(c.toggles))
	telemetry.Toggles.Set(float64(len(c.toggles)))
}

func (c *Console) today() string {
	return toggle.FormatDate(c.opts.Now())
}

func cloneAll(toggles []toggle.Toggle) []toggle.Toggle {
	out := make([]toggle.Toggle, len(toggles))
	for i, t := range toggles {
		out[i] = t.Clone()
	}
	return out
}

func indexOf(toggles []toggle.Toggle, id string) int {
	if id == "" {
		return -1
	}
	for i := range toggles {
		if toggles[i].ID == id {
			return i
		}
	}
	return -1
}

func find(toggles []toggle.Toggle, id string) (*toggle.Toggle, error) {
	i := indexOf(toggles, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrToggleNotFound, id)
	}
	return &toggles[i], nil
}
