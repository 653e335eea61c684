// Package object defines the storage backends a virtual file driver reads from.
//
// A backend answers two questions about an object addressed by (bucket, key):
// how large it is (Stat, the metadata probe) and what bytes it holds in a
// given range (Fetch, the ranged fetch). Every request returns its own
// Outcome; backends keep no "last status" between calls.
//
// Variants:
//   - s3: Amazon S3 or any S3-compatible service (pkg/store/object/s3)
//   - filesystem: a local directory, one subdirectory per bucket (pkg/store/object/fs)
//   - memory: an in-process map, for tests and tooling (pkg/store/object/memory)
//   - badger: an embedded BadgerDB key-value store (pkg/store/object/badger)
package object

import "context"

// Backend is one storage variant that a driver can be bound to.
//
// Implementations perform exactly one request per call. Retrying transient
// outcomes is the caller's job, so a backend must report StatusTransient for
// failures where resending the identical request may succeed.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Backend interface {
	// Stat returns the current size of the object in bytes.
	//
	// The size is only meaningful when the outcome is StatusOK or
	// StatusPreconditionFailed; otherwise it is zero.
	Stat(ctx context.Context, bucket, key string) (uint64, Outcome)

	// Fetch fills buf with the bytes of the object starting at offset.
	//
	// Exactly len(buf) bytes are requested. If the object ends inside the
	// range, the missing tail is zero-filled and the outcome is still OK.
	// On failure the contents of buf are undefined.
	Fetch(ctx context.Context, bucket, key string, offset uint64, buf []byte) Outcome

	// Close releases resources held by the backend.
	Close() error
}

// WritableBackend is implemented by backends that can store objects.
//
// The driver never writes. This interface exists to seed objects from tests
// and tooling.
type WritableBackend interface {
	Backend

	// Put stores data as the full content of (bucket, key), replacing any
	// previous content.
	Put(ctx context.Context, bucket, key string, data []byte) error
}
