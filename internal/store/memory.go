package store

import (
	"context"
	"sync"

	"github.com/TimurManjosov/apollo/internal/toggle"
)

// MemoryStore keeps the encoded collection in process memory.
// Suitable for development and tests; data is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	blob []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]toggle.Toggle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.blob == nil {
		return nil, ErrNotFound
	}
	return decode(m.blob)
}

func (m *MemoryStore) Save(ctx context.Context, toggles []toggle.Toggle) error {
	data, err := encode(toggles)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.blob = data
	m.mu.Unlock()
	return nil
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
