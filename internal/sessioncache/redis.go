// Package sessioncache keeps session snapshots in Redis with an expiry, in
// front of a durable store (see engine.Tiered).
package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/roach88/carelog/internal/engine"
)

// DefaultTTL is how long an untouched snapshot stays cached.
const DefaultTTL = 24 * time.Hour

// DefaultKeyPrefix namespaces snapshot keys.
const DefaultKeyPrefix = "carelog:session:"

var (
	// ErrInvalidParam indicates an empty session id.
	ErrInvalidParam = errors.New("invalid parameter")

	_ engine.SnapshotStore = (*RedisStore)(nil)
)

// RedisStore is an engine.SnapshotStore backed by Redis string keys.
//
// Thread-safety: All methods are safe for concurrent use.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithTTL sets the expiry applied on every save.
//
// Default: 24h (DefaultTTL)
// Use WithTTL(0) to keep snapshots until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithKeyPrefix sets the key namespace.
//
// Default: "carelog:session:"
func WithKeyPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.keyPrefix = prefix
	}
}

// NewRedisStore connects to addr.
func NewRedisStore(addr, password string, db int, opts ...Option) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return New(client, opts...)
}

// New wraps an existing client.
func New(client redis.UniversalClient, opts ...Option) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
		ttl:       DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

// SaveSnapshot implements engine.SnapshotStore.
func (s *RedisStore) SaveSnapshot(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return fmt.Errorf("%w: session id is empty", ErrInvalidParam)
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache session %s: %w", id, err)
	}
	return nil
}

// LoadSnapshot implements engine.SnapshotStore. An expired or unknown key
// reports engine.ErrNoSnapshot.
func (s *RedisStore) LoadSnapshot(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: session id is empty", ErrInvalidParam)
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, engine.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read cached session %s: %w", id, err)
	}
	return data, nil
}

// Delete drops a cached snapshot.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: session id is empty", ErrInvalidParam)
	}
	return s.client.Del(ctx, s.key(id)).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
