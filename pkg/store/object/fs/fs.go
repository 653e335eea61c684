// Package fs implements an object backend on the local filesystem.
//
// Each bucket is a directory under the base path and each key is a file path
// inside it, so "mybucket/data/object1" is stored at
// <base>/mybucket/data/object1. All access goes through an os.Root, so keys
// cannot reach outside the base directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/marmos91/dittovfd/pkg/store/object"
)

// Store implements object.Backend over a local directory tree.
//
// Thread Safety:
// Reads are safe for concurrent use. Concurrent Puts to the same key are
// last-writer-wins.
type Store struct {
	basePath string
	root     *os.Root
}

var _ object.WritableBackend = (*Store)(nil)

// New opens (creating if needed) a filesystem store rooted at basePath.
//
// Parameters:
//   - ctx: Context for cancellation (checked before touching the filesystem)
//   - basePath: Directory holding one subdirectory per bucket
//
// Returns:
//   - *Store: Initialized store
//   - error: Directory creation or open failure, or context error
func New(ctx context.Context, basePath string) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if basePath == "" {
		return nil, fmt.Errorf("filesystem store: path is required")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	root, err := os.OpenRoot(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open base directory: %w", err)
	}

	return &Store{basePath: basePath, root: root}, nil
}

// BasePath returns the directory the store was opened on.
func (s *Store) BasePath() string {
	return s.basePath
}

// objectPath maps bucket/key to a path relative to the root.
// Returns "" when the key cannot name a file (empty or ends with "/").
func objectPath(bucket, key string) string {
	if key == "" || key[len(key)-1] == '/' {
		return ""
	}
	return filepath.Join(bucket, filepath.FromSlash(path.Clean("/" + key)[1:]))
}

// open returns the object's file and size, or the failed outcome.
func (s *Store) open(bucket, key string) (*os.File, uint64, object.Outcome) {
	name := objectPath(bucket, key)
	if name == "" {
		return nil, 0, object.NotFound(bucket, key, nil)
	}

	f, err := s.root.Open(name)
	if err != nil {
		return nil, 0, fsFailure(bucket, key, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fsFailure(bucket, key, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, 0, object.NotFound(bucket, key, nil)
	}

	return f, uint64(info.Size()), object.OK()
}

// Stat returns the size of the object's file.
func (s *Store) Stat(ctx context.Context, bucket, key string) (uint64, object.Outcome) {
	if out, ok := object.Precheck(ctx, bucket, key); !ok {
		return 0, out
	}

	f, size, out := s.open(bucket, key)
	if !out.IsOK() {
		return 0, out
	}
	_ = f.Close()
	return size, out
}

// Fetch reads the requested range of the object's file into buf.
func (s *Store) Fetch(ctx context.Context, bucket, key string, offset uint64, buf []byte) object.Outcome {
	if out, ok := object.Precheck(ctx, bucket, key); !ok {
		return out
	}
	if len(buf) == 0 {
		return object.OK()
	}

	f, size, out := s.open(bucket, key)
	if !out.IsOK() {
		return out
	}
	defer func() { _ = f.Close() }()

	if offset >= size {
		return object.InvalidRange(bucket, key, offset, size)
	}

	cursor := object.NewCursor(buf)
	section := io.NewSectionReader(f, int64(offset), int64(len(buf)))
	if _, err := cursor.Fill(section); err != nil {
		return object.Internal(bucket, key, "failed to read object file", err)
	}
	cursor.ZeroFill()

	return object.OK()
}

// Put writes data as the object's file, creating parent directories.
// The file is written under a temporary name and renamed into place.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bucket == "" {
		return object.ErrInvalidName
	}

	name := objectPath(bucket, key)
	if name == "" {
		return fmt.Errorf("%w: key %q does not name a file", object.ErrInvalidName, key)
	}

	if err := s.root.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	tmp := name + ".tmp"
	if err := s.root.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := s.root.Rename(tmp, name); err != nil {
		_ = s.root.Remove(tmp)
		return fmt.Errorf("failed to commit object: %w", err)
	}
	return nil
}

// Close releases the root directory handle.
func (s *Store) Close() error {
	return s.root.Close()
}

func fsFailure(bucket, key string, err error) object.Outcome {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return object.NotFound(bucket, key, err)
	case errors.Is(err, fs.ErrPermission):
		return object.Failure(object.StatusAccessDenied, &object.Detail{
			Message:        "permission denied",
			Resource:       object.Resource(bucket, key),
			FurtherDetails: err.Error(),
		}, err)
	default:
		return object.Internal(bucket, key, "failed to open object file", err)
	}
}
