package harumemo

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/harumemo/internal/platform"
	"github.com/aretw0/harumemo/pkg/backup"
	"github.com/aretw0/harumemo/pkg/core"
)

// --- Configuration ---

// Option defines a functional option for configuring Harumemo.
type Option = platform.Option

// Config is the file/environment configuration read by LoadConfig.
type Config = platform.Config

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterRedis  = platform.AdapterRedis
	AdapterMemory = platform.AdapterMemory
)

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithBlobStore allows injecting a custom storage adapter.
func WithBlobStore(blobs core.BlobStore) Option {
	return platform.WithBlobStore(blobs)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorageKey overrides the key the notes are persisted under.
func WithStorageKey(key string) Option {
	return platform.WithStorageKey(key)
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithEventBuffer allows specifying the size of the event broker buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithMustExist ensures the data directory or database already exists.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety toggles the `go run` / `go test` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithRedisAuth sets the password and database of the redis adapter.
func WithRedisAuth(password string, db int) Option {
	return platform.WithRedisAuth(password, db)
}

// WithRedisPrefix sets the key prefix of the redis adapter.
func WithRedisPrefix(prefix string) Option {
	return platform.WithRedisPrefix(prefix)
}

// LoadConfig reads a YAML config file (optional) and HARUMEMO_* variables.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// --- Factory ---

// New creates a loaded note Service.
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, uri, opts...)
}

// OpenBlobStore opens only the storage adapter.
func OpenBlobStore(ctx context.Context, uri string, opts ...Option) (core.BlobStore, error) {
	return platform.OpenBlobStore(ctx, uri, opts...)
}

// NewImporter creates a backup importer using the default codecs.
func NewImporter(logger *slog.Logger) *backup.Importer {
	return backup.NewImporter(logger)
}

// --- Safety & Utils ---

// ResolveDataPath determines where a file-based store lives under the sandbox rules.
func ResolveDataPath(userPath string, sandbox bool) string {
	return platform.ResolveDataPath(userPath, sandbox)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindDataDir looks upwards for a project-local .harumemo directory.
func FindDataDir(startDir string) (string, error) {
	return platform.FindDataDir(startDir)
}
