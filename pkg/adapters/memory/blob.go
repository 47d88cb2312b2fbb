// Package memory provides an in-process BlobStore. Nothing survives the
// process; it backs tests and throwaway sessions.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/harumemo/pkg/core"
)

// BlobStore implements core.BlobStore with a map.
type BlobStore struct {
	mu     sync.RWMutex
	blobs  map[string]string
	writes int
}

// New creates an empty BlobStore.
func New() *BlobStore {
	return &BlobStore{blobs: make(map[string]string)}
}

// NewWithBlob creates a BlobStore pre-populated with one value.
func NewWithBlob(key, value string) *BlobStore {
	b := New()
	b.blobs[key] = value
	return b
}

func (b *BlobStore) ReadBlob(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.blobs[key]
	return v, ok, nil
}

func (b *BlobStore) WriteBlob(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = value
	b.writes++
	return nil
}

// Writes returns how many times WriteBlob succeeded.
func (b *BlobStore) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// BlobStoreState exposes internal state for observability.
type BlobStoreState struct {
	Keys   int `json:"keys"`
	Writes int `json:"writes"`
}

// State implements introspection.Introspectable.
func (b *BlobStore) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BlobStoreState{Keys: len(b.blobs), Writes: b.writes}
}

// ComponentType implements introspection.Component.
func (b *BlobStore) ComponentType() string {
	return "memory"
}

var _ core.BlobStore = (*BlobStore)(nil)
var _ introspection.Introspectable = (*BlobStore)(nil)
var _ introspection.Component = (*BlobStore)(nil)
