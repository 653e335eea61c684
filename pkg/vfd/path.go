package vfd

import (
	"fmt"
	"strings"
)

const (
	// Separator divides the bucket from the key in a virtual path.
	Separator = "/"

	// MaxBucketNameLen is the longest bucket name the storage backend accepts.
	MaxBucketNameLen = 255

	// MaxFilenameLen is the longest object key the driver accepts.
	MaxFilenameLen = 1024
)

// ParsePath splits a virtual path of the form "<bucket>/<key...>" at its
// first separator.
//
// The key is everything after that separator, verbatim: it may be empty and
// may contain further separators. No normalization or percent-decoding is
// applied, and bucket/key naming rules are left to the backend.
//
// Returns ErrInvalidArgument if the path is empty, the bucket is empty, or
// either part is longer than its bound.
func ParsePath(name string) (bucket, key string, err error) {
	if name == "" {
		return "", "", fmt.Errorf("%w: invalid file name", ErrInvalidArgument)
	}

	bucket, key, _ = strings.Cut(name, Separator)

	if bucket == "" {
		return "", "", fmt.Errorf("%w: missing bucket name in %q", ErrInvalidArgument, name)
	}
	if len(bucket) > MaxBucketNameLen {
		return "", "", fmt.Errorf("%w: bucket name longer than %d bytes", ErrInvalidArgument, MaxBucketNameLen)
	}
	if len(key) > MaxFilenameLen {
		return "", "", fmt.Errorf("%w: key longer than %d bytes", ErrInvalidArgument, MaxFilenameLen)
	}

	return bucket, key, nil
}

// JoinPath is the inverse of ParsePath.
func JoinPath(bucket, key string) string {
	return bucket + Separator + key
}
