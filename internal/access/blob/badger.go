// SPDX-License-Identifier: MIT

package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/rinman24/arcobs/internal/cache"
	"github.com/rinman24/arcobs/internal/log"
	"github.com/rinman24/arcobs/internal/metrics"
)

// Key layout:
//   meta:<container>          container registry marker
//   blob:<container>/<name>   blob content
const (
	metaPrefix = "meta:"
	blobPrefix = "blob:"
)

// Store is a badger-backed Access. Listings are served from a TTL
// cache keyed by container and invalidated on every write.
type Store struct {
	db       *badger.DB
	listings cache.Cache
	ttl      time.Duration
	logger   zerolog.Logger
}

// StoreOption adjusts a Store.
type StoreOption func(*Store)

// WithListingCache replaces the default in-memory listing cache.
func WithListingCache(c cache.Cache) StoreOption {
	return func(s *Store) { s.listings = c }
}

// WithListingTTL sets how long a cached listing stays valid.
func WithListingTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// Open opens or creates a store at path.
func Open(path string, opts ...StoreOption) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	s := &Store{
		db:       db,
		listings: cache.NewMemory(),
		ttl:      5 * time.Minute,
		logger:   log.WithComponent("blob"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) CreateContainer(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("empty container name")
	}
	key := []byte(metaPrefix + name)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte{1})
	})
	if err != nil {
		return fmt.Errorf("create container %q: %w", name, err)
	}
	s.listings.Delete(name)
	return nil
}

func (s *Store) Put(ctx context.Context, container, name string, data []byte) error {
	key := []byte(blobPrefix + container + "/" + name)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + container)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNoContainer
			}
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", container, name, err)
	}
	s.listings.Delete(container)
	s.logger.Debug().
		Str("container", container).
		Str("name", name).
		Int("bytes", len(data)).
		Msg("blob stored")
	return nil
}

func (s *Store) Get(ctx context.Context, container, name string) ([]byte, error) {
	key := []byte(blobPrefix + container + "/" + name)
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + container)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNoContainer
			}
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNoBlob
			}
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", container, name, err)
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, container, prefix string) ([]string, error) {
	names, ok := s.listings.Get(container)
	metrics.RecordListingLookup(ok)
	if !ok {
		var err error
		names, err = s.scan(ctx, container)
		if err != nil {
			return nil, err
		}
		s.listings.Set(container, names, s.ttl)
	}
	if prefix == "" {
		return append([]string(nil), names...), nil
	}
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, container, name string) error {
	key := []byte(blobPrefix + container + "/" + name)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + container)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNoContainer
			}
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", container, name, err)
	}
	s.listings.Delete(container)
	return nil
}

func (s *Store) scan(ctx context.Context, container string) ([]string, error) {
	keyPrefix := []byte(blobPrefix + container + "/")
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + container)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNoContainer
			}
			return err
		}
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			names = append(names, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", container, err)
	}
	sort.Strings(names)
	return names, nil
}

var _ Access = (*Store)(nil)
