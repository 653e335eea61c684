// Package badger implements an object backend on an embedded BadgerDB
// key-value store.
package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/marmos91/dittovfd/pkg/store/object"
)

// Config configures a BadgerDB object store.
type Config struct {
	// DBPath is the database directory. Ignored when InMemory is set.
	DBPath string

	// InMemory keeps the database in RAM (for tests and scratch use)
	InMemory bool

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64)
	BlockCacheSizeMB int64

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32)
	IndexCacheSizeMB int64

	// BadgerOptions replaces all of the above when set
	BadgerOptions *badger.Options
}

// Store implements object.Backend using BadgerDB.
//
// Each object is a body entry plus a size entry (see keys.go), written in a
// single transaction so Stat and Fetch always agree.
//
// Thread Safety:
// Safe for concurrent use; BadgerDB provides snapshot-isolated transactions.
type Store struct {
	db *badger.DB
}

var _ object.WritableBackend = (*Store)(nil)

// New opens (creating if needed) a BadgerDB object store.
//
// Parameters:
//   - ctx: Context for cancellation (checked before opening the database)
//   - cfg: Database location and cache sizes
//
// Returns:
//   - *Store: Open store
//   - error: Missing path, open failure, or context error
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if cfg.BadgerOptions != nil {
		opts = *cfg.BadgerOptions
	} else {
		if cfg.InMemory {
			opts = badger.DefaultOptions("").WithInMemory(true)
		} else {
			if cfg.DBPath == "" {
				return nil, fmt.Errorf("badger store: db_path is required")
			}
			opts = badger.DefaultOptions(cfg.DBPath)
		}

		opts = opts.WithLoggingLevel(badger.WARNING) // Reduce log noise
		opts = opts.WithCompression(options.None)    // Object bodies are opaque; leave compression to the producer

		blockCacheMB := cfg.BlockCacheSizeMB
		if blockCacheMB == 0 {
			blockCacheMB = 64
		}
		indexCacheMB := cfg.IndexCacheSizeMB
		if indexCacheMB == 0 {
			indexCacheMB = 32
		}
		opts = opts.WithBlockCacheSize(blockCacheMB << 20)
		opts = opts.WithIndexCacheSize(indexCacheMB << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	return &Store{db: db}, nil
}

func validBucket(bucket string) bool {
	return !strings.Contains(bucket, separator)
}

// Stat reads the object's size entry.
func (s *Store) Stat(ctx context.Context, bucket, key string) (uint64, object.Outcome) {
	if out, ok := object.Precheck(ctx, bucket, key); !ok {
		return 0, out
	}
	if !validBucket(bucket) {
		return 0, object.NotFound(bucket, key, nil)
	}

	var size uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keySize(bucket, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			n, ok := decodeSize(val)
			if !ok {
				return fmt.Errorf("corrupt size entry (%d bytes)", len(val))
			}
			size = n
			return nil
		})
	})
	if err != nil {
		return 0, dbFailure(bucket, key, err)
	}

	return size, object.OK()
}

// Fetch copies the requested range of the object's body into buf.
func (s *Store) Fetch(ctx context.Context, bucket, key string, offset uint64, buf []byte) object.Outcome {
	if out, ok := object.Precheck(ctx, bucket, key); !ok {
		return out
	}
	if len(buf) == 0 {
		return object.OK()
	}
	if !validBucket(bucket) {
		return object.NotFound(bucket, key, nil)
	}

	out := object.OK()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBody(bucket, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = object.CopyRange(bucket, key, val, offset, buf)
			return nil
		})
	})
	if err != nil {
		return dbFailure(bucket, key, err)
	}

	return out
}

// Put stores data as the object's body and records its size.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bucket == "" || !validBucket(bucket) {
		return object.ErrInvalidName
	}

	body := data
	if body == nil {
		body = []byte{}
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyBody(bucket, key), body); err != nil {
			return err
		}
		return txn.Set(keySize(bucket, key), encodeSize(uint64(len(body))))
	})
	if err != nil {
		return fmt.Errorf("failed to store object %s: %w", object.Resource(bucket, key), err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func dbFailure(bucket, key string, err error) object.Outcome {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return object.NotFound(bucket, key, err)
	}
	return object.Internal(bucket, key, "BadgerDB read failed", err)
}
