package fs

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"
)

// BlobStoreState exposes internal state for observability.
type BlobStoreState struct {
	Path          string   `json:"path"`
	Keys          []string `json:"keys"`
	Writes        int      `json:"writes"`
	WatcherActive bool     `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (s *BlobStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.written))
	for k := range s.written {
		keys = append(keys, k)
	}

	return BlobStoreState{
		Path:          s.Path,
		Keys:          keys,
		Writes:        s.writes,
		WatcherActive: s.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (s *BlobStore) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*BlobStore)(nil)
var _ introspection.Component = (*BlobStore)(nil)

// Writes returns how many times WriteBlob succeeded.
func (s *BlobStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// WatcherActive reports whether a watcher is currently running.
func (s *BlobStore) WatcherActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watcherActive
}

func (s *BlobStore) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

func (s *BlobStore) log() *slog.Logger {
	if s.config.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.config.Logger
}

func (s *BlobStore) reportError(op string) func(error) {
	return func(err error) {
		err = fmt.Errorf("%s: %w", op, err)
		if s.config.ErrorHandler != nil {
			s.config.ErrorHandler(err)
			return
		}
		s.log().Error(op+" panic", "error", err)
	}
}
