// Package memory implements an in-process object backend.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/marmos91/dittovfd/pkg/store/object"
)

// Store implements object.Backend using a map of buckets to objects.
//
// Designed for testing, development and tooling: data is volatile and bounded
// by available RAM.
//
// Thread Safety:
// All operations are protected by a sync.RWMutex. Object bodies are copied on
// Put, so callers may reuse their buffers.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

var _ object.WritableBackend = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{buckets: make(map[string]map[string][]byte)}
}

// CreateBucket makes an empty bucket. Put creates buckets implicitly.
func (s *Store) CreateBucket(bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string][]byte)
	}
}

func (s *Store) get(bucket, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.buckets[bucket][key]
	return data, ok
}

// Stat returns the length of the stored object.
func (s *Store) Stat(ctx context.Context, bucket, key string) (uint64, object.Outcome) {
	if out, ok := object.Precheck(ctx, bucket, key); !ok {
		return 0, out
	}

	data, ok := s.get(bucket, key)
	if !ok {
		return 0, object.NotFound(bucket, key, nil)
	}
	return uint64(len(data)), object.OK()
}

// Fetch copies the requested range of the stored object into buf.
func (s *Store) Fetch(ctx context.Context, bucket, key string, offset uint64, buf []byte) object.Outcome {
	if out, ok := object.Precheck(ctx, bucket, key); !ok {
		return out
	}
	if len(buf) == 0 {
		return object.OK()
	}

	data, ok := s.get(bucket, key)
	if !ok {
		return object.NotFound(bucket, key, nil)
	}
	return object.CopyRange(bucket, key, data, offset, buf)
}

// Put stores a copy of data.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bucket == "" {
		return object.ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		objects = make(map[string][]byte)
		s.buckets[bucket] = objects
	}
	objects[key] = slices.Clone(data)
	if objects[key] == nil {
		objects[key] = []byte{}
	}
	return nil
}

// Delete removes an object. Missing objects are ignored.
func (s *Store) Delete(bucket, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets[bucket], key)
}

// Close discards all objects.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.buckets)
	return nil
}
