// Package snapshot holds the latest published view of the toggle collection
// and fans out change notifications to streaming clients.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TimurManjosov/apollo/internal/toggle"
)

// Snapshot is an immutable view of the collection at one point in time.
type Snapshot struct {
	ETag      string          `json:"etag"`
	Toggles   []toggle.Toggle `json:"toggles"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Build copies toggles and derives a weak ETag from their persisted encoding.
func Build(toggles []toggle.Toggle) *Snapshot {
	cp := make([]toggle.Toggle, len(toggles))
	for i, t := range toggles {
		cp[i] = t.Clone()
	}
	blob, _ := toggle.MarshalCollection(cp)
	sum := sha256.Sum256(blob)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return &Snapshot{ETag: etag, Toggles: cp, UpdatedAt: time.Now().UTC()}
}

// Holder owns the current snapshot and its subscribers.
type Holder struct {
	current atomic.Pointer[Snapshot]

	mu   sync.Mutex
	subs map[chan string]struct{}
}

// NewHolder returns a holder whose current snapshot is empty.
func NewHolder() *Holder {
	h := &Holder{subs: make(map[chan string]struct{})}
	h.current.Store(Build(nil))
	return h
}

// Load returns the current snapshot. Callers must not modify it.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Update swaps in s and notifies subscribers when the ETag changed.
func (h *Holder) Update(s *Snapshot) {
	prev := h.current.Swap(s)
	if prev != nil && prev.ETag == s.ETag {
		return
	}
	h.publish(s.ETag)
}
