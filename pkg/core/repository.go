package core

import "context"

// DefaultStorageKey is the fixed identifier the whole store is persisted under.
const DefaultStorageKey = "harumemo_data"

// BlobStore defines the contract of the persistence provider.
// The store is written as a single text blob under a single key, so an
// adapter only needs whole-value reads and writes (Filesystem, SQLite, Redis, etc).
type BlobStore interface {
	// ReadBlob returns the value stored under key. ok is false when nothing
	// was ever written; that is not an error.
	ReadBlob(ctx context.Context, key string) (value string, ok bool, err error)

	// WriteBlob replaces the value stored under key. The write must be atomic:
	// readers observe either the previous or the new blob, never a mix.
	WriteBlob(ctx context.Context, key, value string) error
}

// Watchable is implemented by blob stores that can report changes made by
// other processes (e.g. the same file edited by a second instance).
type Watchable interface {
	Watch(ctx context.Context, key string) (<-chan Event, error)
}
