package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Loaded          bool   `json:"loaded"`
	Notes           int    `json:"notes"`
	StorageKey      string `json:"storage_key"`
	BlobStoreType   string `json:"blob_store_type"`
	Subscribers     int    `json:"subscribers"`
	EventBufferSize int    `json:"event_buffer_size"`
	BlobStore       any    `json:"blob_store,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blobType := "unknown"
	var blobState any
	if s.blobs != nil {
		blobType = "blob_store"
		if comp, ok := s.blobs.(introspection.Component); ok {
			blobType = comp.ComponentType()
		}
		if in, ok := s.blobs.(introspection.Introspectable); ok {
			blobState = in.State()
		}
	}

	return ServiceState{
		Loaded:          s.store.Loaded(),
		Notes:           s.store.Len(),
		StorageKey:      s.store.config.Key,
		BlobStoreType:   blobType,
		Subscribers:     s.broker.len(),
		EventBufferSize: s.eventBufferSize,
		BlobStore:       blobState,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
