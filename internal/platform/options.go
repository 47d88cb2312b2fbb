package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/harumemo/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterRedis  = "redis"
	AdapterMemory = "memory"
)

// options holds the internal configuration for the note service.
type options struct {
	blobs       core.BlobStore
	logger      *slog.Logger
	adapter     string
	storageKey  string
	clock       func() time.Time
	eventBuffer int

	mustExist    bool
	forceTemp    bool
	devSafety    bool
	errorHandler func(error)

	redisPassword string
	redisDB       int
	redisPrefix   string
}

// Option defines a functional option for configuring the service.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter:     AdapterFS,
		storageKey:  core.DefaultStorageKey,
		devSafety:   true,
		redisPrefix: "harumemo:",
	}
}

func resolve(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAdapter selects the blob store by name ("fs", "sqlite", "redis", "memory").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithBlobStore injects a ready blob store; the adapter setting is then ignored.
func WithBlobStore(blobs core.BlobStore) Option {
	return func(o *options) {
		o.blobs = blobs
	}
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorageKey overrides the key the store is persisted under.
func WithStorageKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.storageKey = key
		}
	}
}

// WithClock replaces time.Now for timestamps (tests).
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithEventBuffer sets the per-subscriber event buffer. Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithMustExist refuses to create the data directory or database file.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp re-roots file-based stores into the system temp directory.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox applied under `go run` / `go test`.
// By default (true) file-based stores are redirected to a temp directory so a
// development run never touches real notes.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithWatcherErrorHandler receives runtime watcher failures that are
// otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithRedisAuth sets the password and database index for the redis adapter.
func WithRedisAuth(password string, db int) Option {
	return func(o *options) {
		o.redisPassword = password
		o.redisDB = db
	}
}

// WithRedisPrefix sets the key prefix for the redis adapter.
func WithRedisPrefix(prefix string) Option {
	return func(o *options) {
		o.redisPrefix = prefix
	}
}
