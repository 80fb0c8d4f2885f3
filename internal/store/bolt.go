package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

// BoltFile is the cache file name inside the cache directory.
const BoltFile = "cache.db"

const defaultOpenTimeout = 2 * time.Second

// ErrLocked is returned by NewBoltStore when another process, usually a
// running monitor, holds the cache file.
var ErrLocked = errors.New("cache file is in use by another process; " +
	"stop the monitor or switch cache.backend to redis to share the cache")

// BoltStore implements Store on a single bbolt file with one bucket per
// category. bbolt holds an exclusive lock on the file, so a second monitor
// pointed at the same directory fails to open instead of corrupting it.
type BoltStore struct {
	db *bolt.DB
}

// BoltOption configures a BoltStore.
type BoltOption func(*bolt.Options)

// WithOpenTimeout bounds how long Open waits for the file lock.
func WithOpenTimeout(d time.Duration) BoltOption {
	return func(o *bolt.Options) {
		o.Timeout = d
	}
}

// NewBoltStore opens (creating if needed) the cache in dir.
func NewBoltStore(dir string, opts ...BoltOption) (*BoltStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	options := &bolt.Options{Timeout: defaultOpenTimeout}
	for _, opt := range opts {
		opt(options)
	}

	path := filepath.Join(dir, BoltFile)
	db, err := bolt.Open(path, 0o600, options)
	if errors.Is(err, berrors.ErrTimeout) {
		return nil, fmt.Errorf("opening cache %s: %w", path, ErrLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, c := range Categories {
			if _, err := tx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return fmt.Errorf("creating bucket %s: %w", c, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Get returns the value for key or ErrNotFound.
func (s *BoltStore) Get(_ context.Context, key Key) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(key.Category))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(key.encode())
		if v == nil {
			return ErrNotFound
		}
		// bbolt values are only valid inside the transaction.
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

// Set stores value under key in a single transaction.
func (s *BoltStore) Set(_ context.Context, key Key, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(key.Category))
		if err != nil {
			return err
		}
		return b.Put(key.encode(), value)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *BoltStore) Delete(_ context.Context, key Key) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(key.Category))
		if b == nil {
			return nil
		}
		return b.Delete(key.encode())
	})
}

// Contains reports whether key has a value.
func (s *BoltStore) Contains(ctx context.Context, key Key) (bool, error) {
	_, err := s.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// DeleteCategory drops every entry of c and returns how many were removed.
func (s *BoltStore) DeleteCategory(_ context.Context, c Category) (int, error) {
	var n int
	err := s.db.Update(func(tx *bolt.Tx) error {
		name := []byte(c)
		b := tx.Bucket(name)
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		if err := tx.DeleteBucket(name); err != nil {
			return err
		}
		_, err := tx.CreateBucket(name)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clearing %s: %w", c, err)
	}
	return n, nil
}

// Clear drops every category.
func (s *BoltStore) Clear(ctx context.Context) error {
	for _, c := range Categories {
		if _, err := s.DeleteCategory(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of entries in c.
func (s *BoltStore) Count(_ context.Context, c Category) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(c)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Ping checks that the database is still open.
func (s *BoltStore) Ping(_ context.Context) error {
	return s.db.View(func(*bolt.Tx) error { return nil })
}

// Path returns the cache file location.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// Close releases the file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
