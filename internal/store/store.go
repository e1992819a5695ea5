// Package store persists the toggle collection.
//
// Every backend keeps the whole collection as one JSON array under a fixed
// namespace. There are no partial updates: Save replaces the blob.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/TimurManjosov/apollo/internal/toggle"
)

// DefaultNamespace is the key the collection is stored under.
const DefaultNamespace = "apollo_toggles"

// ErrNotFound is returned by Load when no collection has been saved yet.
var ErrNotFound = errors.New("toggle collection not found")

// Store defines the persistence contract for the toggle collection.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the saved collection, or ErrNotFound if nothing was saved.
	Load(ctx context.Context) ([]toggle.Toggle, error)

	// Save replaces the saved collection.
	Save(ctx context.Context, toggles []toggle.Toggle) error

	// Close releases any resources held by the store.
	Close() error
}

func encode(toggles []toggle.Toggle) ([]byte, error) {
	data, err := toggle.MarshalCollection(toggles)
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]toggle.Toggle, error) {
	toggles, err := toggle.UnmarshalCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return toggles, nil
}

func namespaceOrDefault(ns string) string {
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}
