package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "mm"
	scanBatch          = 500
)

// RedisStore implements Store on Redis for deployments where the cache must
// outlive the host. Keys are "<prefix>:<category>:<parts>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key, so several monitors can share a
// Redis database.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts *redis.Options, ropts ...RedisOption) (*RedisStore, error) {
	s := &RedisStore{
		client: redis.NewClient(opts),
		prefix: defaultRedisPrefix,
	}
	for _, opt := range ropts {
		opt(s)
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}

	return s, nil
}

// NewRedisStoreFromURL parses a redis:// URL and connects.
func NewRedisStoreFromURL(ctx context.Context, url string, ropts ...RedisOption) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewRedisStore(ctx, opts, ropts...)
}

func (s *RedisStore) redisKey(key Key) string {
	return s.categoryPrefix(key.Category) + string(key.encode())
}

func (s *RedisStore) categoryPrefix(c Category) string {
	return s.prefix + ":" + string(c) + ":"
}

// Get returns the value for key or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	v, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key without expiry.
func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

// Contains reports whether key exists.
func (s *RedisStore) Contains(ctx context.Context, key Key) (bool, error) {
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return n > 0, nil
}

// DeleteCategory unlinks every key of c in SCAN batches.
func (s *RedisStore) DeleteCategory(ctx context.Context, c Category) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	match := s.categoryPrefix(c) + "*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("scanning %s: %w", c, err)
		}
		if len(keys) > 0 {
			n, err := s.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("unlinking %s: %w", c, err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Clear drops every category under the prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	for _, c := range Categories {
		if _, err := s.DeleteCategory(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of keys in c. SCAN may return a key more than
// once, so keys are counted once each.
func (s *RedisStore) Count(ctx context.Context, c Category) (int, error) {
	match := s.categoryPrefix(c) + "*"
	keys, err := scanKeys(func(cursor uint64) ([]string, uint64, error) {
		return s.client.Scan(ctx, cursor, match, scanBatch).Result()
	})
	if err != nil {
		return len(keys), fmt.Errorf("scanning %s: %w", c, err)
	}
	return len(keys), nil
}

// scanKeys follows a SCAN cursor to the end and returns the distinct keys.
func scanKeys(scan func(cursor uint64) ([]string, uint64, error)) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	var cursor uint64
	for {
		batch, next, err := scan(cursor)
		if err != nil {
			return keys, err
		}
		for _, k := range batch {
			keys[k] = struct{}{}
		}
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
