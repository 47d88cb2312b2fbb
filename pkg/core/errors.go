package core

import "errors"

// Common errors.
var (
	// ErrValidation marks input that was rejected as a whole: a malformed date,
	// an unparseable backup body, a wrong file extension.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyResult is returned when there is nothing to export or an import
	// produced zero valid records. It is distinct from ErrValidation.
	ErrEmptyResult = errors.New("empty result")

	// ErrStorage wraps failures of the underlying BlobStore.
	ErrStorage = errors.New("storage failure")

	ErrNotFound = errors.New("note not found")

	// ErrNotLoaded guards writes until Load succeeded, so a failed load never
	// results in an empty store overwriting real data.
	ErrNotLoaded = errors.New("store is not loaded")
)

// ErrNotWatchable is returned by Service.Watch when the blob store cannot
// report external changes.
var ErrNotWatchable = errors.New("blob store does not support watching")
