package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/harumemo/pkg/adapters/fs"
	"github.com/aretw0/harumemo/pkg/adapters/memory"
	"github.com/aretw0/harumemo/pkg/adapters/redis"
	"github.com/aretw0/harumemo/pkg/adapters/sqlite"
	"github.com/aretw0/harumemo/pkg/core"
)

// SQLiteFileName is used when the sqlite URI names a directory.
const SQLiteFileName = "harumemo.db"

// OpenBlobStore builds and initializes the blob store selected by the options.
// The uri is adapter-specific: a directory for fs, a database file for
// sqlite, an address or redis:// URL for redis; memory ignores it.
func OpenBlobStore(ctx context.Context, uri string, opts ...Option) (core.BlobStore, error) {
	return openBlobStore(ctx, uri, resolve(opts))
}

func openBlobStore(ctx context.Context, uri string, o *options) (core.BlobStore, error) {
	if o.blobs != nil {
		return o.blobs, nil
	}

	switch o.adapter {
	case AdapterFS:
		return openFS(ctx, uri, o)
	case AdapterSQLite:
		return openSQLite(ctx, uri, o)
	case AdapterRedis:
		return openRedis(ctx, uri, o)
	case AdapterMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// dataPath applies the dev sandbox to a file-based location.
func dataPath(uri string, o *options) string {
	sandbox := o.forceTemp || (o.devSafety && IsDevRun())
	path := ResolveDataPath(uri, sandbox)
	if sandbox && path != uri && o.logger != nil {
		o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", uri, "resolved_path", path)
	}
	return path
}

func openFS(ctx context.Context, uri string, o *options) (core.BlobStore, error) {
	if uri == "" {
		uri = DefaultDataDir()
	}
	store := fs.NewBlobStore(fs.Config{
		Path:         dataPath(uri, o),
		MustExist:    o.mustExist,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	})
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func openSQLite(ctx context.Context, uri string, o *options) (core.BlobStore, error) {
	if uri == "" {
		uri = filepath.Join(DefaultDataDir(), SQLiteFileName)
	}
	path := dataPath(uri, o)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, SQLiteFileName)
	}

	if _, err := os.Stat(path); err != nil {
		if o.mustExist {
			return nil, fmt.Errorf("database %s does not exist", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
	}
	return sqlite.Open(ctx, path, o.logger)
}

func openRedis(ctx context.Context, uri string, o *options) (core.BlobStore, error) {
	cfg := redis.Config{
		Addr:     uri,
		Password: o.redisPassword,
		DB:       o.redisDB,
		Prefix:   o.redisPrefix,
		Logger:   o.logger,
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		parsed, err := goredis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		cfg.Addr = parsed.Addr
		cfg.DB = parsed.DB
		if parsed.Password != "" {
			cfg.Password = parsed.Password
		}
	}
	return redis.Open(ctx, cfg)
}
