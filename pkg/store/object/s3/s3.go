// Package s3 implements the object backend for Amazon S3 and S3-compatible
// services (MinIO, Cubbit DS3, Localstack, ...).
//
// Stat is a HeadObject request whose Content-Length becomes the object size.
// Fetch is a GetObject request with a "bytes=first-last" Range header whose
// body is streamed into the caller's buffer through an object.Cursor.
//
// The store never retries. The SDK client it is given should be built with
// NewClient, which disables the SDK's own retryer so that the driver's
// bounded retry loop is the only one in effect.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/dittovfd/pkg/store/object"
)

// API defines the subset of the S3 client used by the store.
// *s3.Client satisfies it; tests substitute a fake.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store implements object.Backend on top of an S3 API client.
//
// Thread Safety:
// Safe for concurrent use; every call issues an independent request and keeps
// its outcome local.
type Store struct {
	client API
}

var _ object.WritableBackend = (*Store)(nil)

// New creates an S3 backend using client.
func New(client API) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	return &Store{client: client}, nil
}

// Stat returns the object's Content-Length as reported by HeadObject.
//
// A response without Content-Length is reported as size 0.
func (s *Store) Stat(ctx context.Context, bucket, key string) (uint64, object.Outcome) {
	if bucket == "" {
		return 0, invalidName(key)
	}

	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, classify(ctx, "HeadObject", bucket, key, err)
	}

	length := aws.ToInt64(result.ContentLength)
	if length < 0 {
		length = 0
	}
	return uint64(length), object.OK()
}

// Fetch reads len(buf) bytes starting at offset with a single ranged GET.
//
// The body is copied chunk by chunk into buf. A body shorter than the range
// (the object ends inside it) leaves a zero-filled tail; a body longer than
// the range is a protocol violation and fails with StatusFailed. An
// interrupted body is reported as StatusTransient so the whole range can be
// requested again.
func (s *Store) Fetch(ctx context.Context, bucket, key string, offset uint64, buf []byte) object.Outcome {
	if bucket == "" {
		return invalidName(key)
	}
	if len(buf) == 0 {
		return object.OK()
	}

	// S3 ranges are inclusive
	last := offset + uint64(len(buf)) - 1
	rangeHeader := fmt.Sprintf("bytes=%d-%d", offset, last)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		return classify(ctx, "GetObject", bucket, key, err)
	}
	defer func() { _ = result.Body.Close() }()

	cursor := object.NewCursor(buf)
	if _, err := cursor.Fill(result.Body); err != nil {
		return bodyFailure(ctx, bucket, key, rangeHeader, cursor, err)
	}
	cursor.ZeroFill()

	return object.OK()
}

// Put uploads data as the complete object.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	if bucket == "" {
		return object.ErrInvalidName
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return classify(ctx, "PutObject", bucket, key, err).Err()
	}
	return nil
}

// Close is a no-op: the SDK client owns no resources that need releasing.
func (s *Store) Close() error {
	return nil
}

func invalidName(key string) object.Outcome {
	return object.Failure(object.StatusFailed, &object.Detail{
		Message:  "bucket name is empty",
		Resource: "/" + key,
	}, object.ErrInvalidName)
}

func bodyFailure(ctx context.Context, bucket, key, rangeHeader string, cursor *object.Cursor, err error) object.Outcome {
	detail := &object.Detail{
		Resource:       bucket + "/" + key,
		FurtherDetails: err.Error(),
	}
	detail.Add("range", rangeHeader)
	detail.Add("received", fmt.Sprint(cursor.Written()))

	switch {
	case errors.Is(err, object.ErrCursorOverflow):
		detail.Message = "response body is longer than the requested range"
		return object.Failure(object.StatusFailed, detail, err)
	case ctx.Err() != nil:
		detail.Message = "request canceled while reading the response body"
		return object.Failure(object.StatusCanceled, detail, err)
	default:
		detail.Message = "response body interrupted"
		return object.Failure(object.StatusTransient, detail, err)
	}
}
