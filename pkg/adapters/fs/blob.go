// Package fs persists the note store as a JSON file on disk and reports
// changes made to that file by other processes.
package fs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/harumemo/pkg/core"
)

// FileExtension is appended to the storage key to build the blob's file name.
const FileExtension = ".json"

// Config holds the configuration for the filesystem blob store.
type Config struct {
	Path      string // Directory holding the blob files.
	MustExist bool   // Fail instead of creating Path.
	Perm      os.FileMode
	Logger    *slog.Logger
	// ErrorHandler receives watcher errors that have no caller to return to.
	ErrorHandler func(error)
}

// BlobStore implements core.BlobStore with one file per key.
type BlobStore struct {
	Path   string
	config Config

	mu            sync.RWMutex
	written       map[string][sha256.Size]byte // Hash of the last blob this process wrote, per key.
	writes        int
	watcherActive bool
}

// NewBlobStore creates a filesystem blob store. Call Initialize before use.
func NewBlobStore(config Config) *BlobStore {
	if config.Perm == 0 {
		config.Perm = 0644
	}
	return &BlobStore{
		Path:    config.Path,
		config:  config,
		written: make(map[string][sha256.Size]byte),
	}
}

// Initialize makes sure the directory exists.
func (s *BlobStore) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.Path)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s is not a directory", s.Path)
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", s.Path, err)
	case s.config.MustExist:
		return fmt.Errorf("path %s does not exist", s.Path)
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.Path, err)
	}
	if s.config.Logger != nil {
		s.config.Logger.Debug("created storage directory", "path", s.Path)
	}
	return nil
}

// FileFor returns the file backing key.
func (s *BlobStore) FileFor(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: invalid storage key %q", core.ErrValidation, key)
	}
	return filepath.Join(s.Path, key+FileExtension), nil
}

func (s *BlobStore) ReadBlob(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := s.FileFor(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), true, nil
}

func (s *BlobStore) WriteBlob(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.FileFor(key)
	if err != nil {
		return err
	}

	// Record the hash before the rename so the watcher never mistakes our
	// own write for an external one.
	sum := sha256.Sum256([]byte(value))
	s.mu.Lock()
	prev, hadPrev := s.written[key]
	s.written[key] = sum
	s.mu.Unlock()

	if err := writeFileAtomic(path, []byte(value), s.config.Perm); err != nil {
		s.mu.Lock()
		if hadPrev {
			s.written[key] = prev
		} else {
			delete(s.written, key)
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return nil
}

// isOwnWrite reports whether data is exactly what this process last wrote under key.
func (s *BlobStore) isOwnWrite(key string, data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.written[key]
	return ok && sum == sha256.Sum256(data)
}

var _ core.BlobStore = (*BlobStore)(nil)
var _ core.Watchable = (*BlobStore)(nil)
