// Package redis persists the note store blob in Redis. Writers announce
// every write on a pub/sub channel, so several processes sharing one server
// can follow each other's changes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aretw0/harumemo/pkg/core"
)

// Config holds the connection settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	Prefix       string // Prepended to every key, e.g. "harumemo:".
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// BlobStore implements core.BlobStore on top of a Redis string key.
type BlobStore struct {
	client   *redis.Client
	config   Config
	writerID string

	mu       sync.RWMutex
	writes   int
	watchers int
}

// Open connects and verifies the server answers.
func Open(ctx context.Context, cfg Config) (*BlobStore, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Debug("redis blob store connected", "addr", cfg.Addr, "db", cfg.DB)
	}
	return &BlobStore{client: client, config: cfg, writerID: uuid.NewString()}, nil
}

func (s *BlobStore) key(key string) string {
	return s.config.Prefix + key
}

func (s *BlobStore) channel(key string) string {
	return s.config.Prefix + key + ":changed"
}

func (s *BlobStore) ReadBlob(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", s.key(key), err)
	}
	return value, true, nil
}

// WriteBlob replaces the value (SET is atomic) and announces the write.
func (s *BlobStore) WriteBlob(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key(key), err)
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()

	// The value is durable at this point; a lost notification only delays peers.
	if err := s.client.Publish(ctx, s.channel(key), s.writerID).Err(); err != nil && s.config.Logger != nil {
		s.config.Logger.Warn("failed to announce write", "key", s.key(key), "error", err)
	}
	return nil
}

// Watch reports writes made by other BlobStores to key. The channel is
// closed when ctx ends.
func (s *BlobStore) Watch(ctx context.Context, key string) (<-chan core.Event, error) {
	sub := s.client.Subscribe(ctx, s.channel(key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel(key), err)
	}

	s.mu.Lock()
	s.watchers++
	s.mu.Unlock()

	events := make(chan core.Event)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer func() {
			_ = sub.Close()
			close(events)
			s.mu.Lock()
			s.watchers--
			s.mu.Unlock()
		}()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-messages:
				if !ok {
					return nil
				}
				if msg.Payload == s.writerID {
					continue
				}
				select {
				case events <- core.Event{Type: core.EventExternal, Timestamp: time.Now().Unix()}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if s.config.Logger != nil {
			s.config.Logger.Error("redis watch panic", "error", err)
		}
	}))

	return events, nil
}

// Close closes the connection pool.
func (s *BlobStore) Close() error {
	return s.client.Close()
}

// BlobStoreState exposes internal state for observability.
type BlobStoreState struct {
	Addr     string `json:"addr"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	WriterID string `json:"writer_id"`
	Writes   int    `json:"writes"`
	Watchers int    `json:"watchers"`
}

// State implements introspection.Introspectable.
func (s *BlobStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BlobStoreState{
		Addr:     s.config.Addr,
		DB:       s.config.DB,
		Prefix:   s.config.Prefix,
		WriterID: s.writerID,
		Writes:   s.writes,
		Watchers: s.watchers,
	}
}

// ComponentType implements introspection.Component.
func (s *BlobStore) ComponentType() string {
	return "redis"
}

var _ core.BlobStore = (*BlobStore)(nil)
var _ core.Watchable = (*BlobStore)(nil)
var _ introspection.Introspectable = (*BlobStore)(nil)
var _ introspection.Component = (*BlobStore)(nil)
