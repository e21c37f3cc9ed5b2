package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketLists     = []byte("lists")
	bucketDetails   = []byte("details")
	bucketFavorites = []byte("favorites")
	bucketMisc      = []byte("misc")
)

var allBuckets = [][]byte{bucketLists, bucketDetails, bucketFavorites, bucketMisc}

// partitions maps cache key prefixes to the bucket that owns them
var partitions = []struct {
	prefix string
	bucket []byte
}{
	{"upcoming_movies_", bucketLists},
	{"popular_movies_", bucketLists},
	{"movie_details_", bucketDetails},
	{"favorites", bucketFavorites},
}

// bucketFor returns the bucket a key is partitioned into
func bucketFor(key string) []byte {
	for _, p := range partitions {
		if strings.HasPrefix(key, p.prefix) {
			return p.bucket
		}
	}
	return bucketMisc
}

// BoltStore implements domain.KeyValueStore using BoltDB.
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewBoltStore opens (or creates) marquee.db under dir.
// An empty dir gives a memory-only store with no persistence.
func NewBoltStore(dir string) (*BoltStore, error) {
	if dir == "" {
		// Memory-only mode (no persistence)
		return &BoltStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marquee.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return clone(data), true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false, nil
	}

	// Read from BoltDB
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFor(key))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, key, err)
	}

	if data == nil {
		return nil, false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return clone(data), true, nil
}

func (s *BoltStore) Set(_ context.Context, key string, value []byte) error {
	data := clone(value)

	if s.db != nil {
		// Write to BoltDB first so the memory cache never holds unpersisted data
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketFor(key)).Put([]byte(key), data)
		})
		if err != nil {
			return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, key, err)
		}
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return nil
}

func (s *BoltStore) Delete(_ context.Context, key string) error {
	// Clear from memory cache
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFor(key))
		if b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, key, err)
	}
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
