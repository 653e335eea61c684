package object

import (
	"context"
	"fmt"
)

// Resource formats a bucket and key the way they appear in diagnostics.
func Resource(bucket, key string) string {
	return bucket + "/" + key
}

// Precheck validates the parts of a request every local backend rejects
// the same way: an ended context and an empty bucket name.
//
// Returns ok=false with the failed outcome when the request must not proceed.
func Precheck(ctx context.Context, bucket, key string) (Outcome, bool) {
	if err := ctx.Err(); err != nil {
		return Failure(StatusCanceled, &Detail{
			Message:        "request canceled",
			Resource:       Resource(bucket, key),
			FurtherDetails: err.Error(),
		}, err), false
	}
	if bucket == "" {
		return Failure(StatusFailed, &Detail{
			Message:  "bucket name is empty",
			Resource: Resource(bucket, key),
		}, ErrInvalidName), false
	}
	return OK(), true
}

// NotFound builds the outcome for a missing bucket or object.
func NotFound(bucket, key string, cause error) Outcome {
	d := &Detail{
		Message:  "The specified key does not exist.",
		Resource: Resource(bucket, key),
	}
	if cause != nil {
		d.FurtherDetails = cause.Error()
	}
	return Failure(StatusNotFound, d, cause)
}

// InvalidRange builds the outcome for a range starting at or past the end of
// an object of the given size.
func InvalidRange(bucket, key string, offset, size uint64) Outcome {
	d := &Detail{
		Message:  "The requested range is not satisfiable",
		Resource: Resource(bucket, key),
	}
	d.Add("offset", fmt.Sprint(offset))
	d.Add("object_size", fmt.Sprint(size))
	return Failure(StatusInvalidRange, d, nil)
}

// Internal builds the outcome for a local I/O failure.
func Internal(bucket, key, message string, cause error) Outcome {
	d := &Detail{
		Message:  message,
		Resource: Resource(bucket, key),
	}
	if cause != nil {
		d.FurtherDetails = cause.Error()
	}
	return Failure(StatusFailed, d, cause)
}

// CopyRange serves a ranged fetch from an in-memory object body: bytes
// [offset, offset+len(buf)) of data are copied into buf and any part of the
// range past the end of data is zero-filled.
func CopyRange(bucket, key string, data []byte, offset uint64, buf []byte) Outcome {
	if len(buf) == 0 {
		return OK()
	}
	size := uint64(len(data))
	if offset >= size {
		return InvalidRange(bucket, key, offset, size)
	}

	c := NewCursor(buf)
	end := min(size, offset+uint64(len(buf)))
	_, _ = c.Write(data[offset:end])
	c.ZeroFill()
	return OK()
}
