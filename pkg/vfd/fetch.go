package vfd

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/dittovfd/internal/retry"
	"github.com/marmos91/dittovfd/pkg/store/object"
)

const (
	opProbe = "probe"
	opFetch = "fetch"
)

// do runs one backend request under the driver's retry policy.
//
// Transient outcomes are retried with bounded exponential backoff. The last
// outcome is returned with Attempts set to the number of requests issued.
// A transient status still present after the final attempt becomes
// StatusRetriesExhausted; a context ending while waiting becomes
// StatusCanceled.
func (d *Driver) do(ctx context.Context, op, bucket, key string, fn func(ctx context.Context) object.Outcome) object.Outcome {
	start := time.Now()

	var last object.Outcome
	attempts, err := retry.Do(ctx, d.retry, func(attempt int) error {
		if err := ctx.Err(); err != nil {
			last = canceled(bucket, key, err)
			return err
		}
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				last = canceled(bucket, key, err)
				return err
			}
		}

		last = fn(ctx)
		if last.IsOK() {
			return nil
		}
		if last.Status.Retryable() {
			return retry.Retryable(last.Err())
		}
		return last.Err()
	})

	switch {
	case err == nil, !last.IsOK() && !last.Status.Retryable() && last.Status != object.StatusCanceled:
		// Success or a terminal backend status: keep last as reported.
	case errors.Is(err, retry.ErrExhausted):
		last = object.Failure(object.StatusRetriesExhausted, last.Detail, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if last.Status != object.StatusCanceled {
			last = canceled(bucket, key, err)
		}
	}
	last.Attempts = attempts

	d.metrics.ObserveRequest(op, last.Status.String(), attempts, time.Since(start))
	return last
}

func canceled(bucket, key string, cause error) object.Outcome {
	return object.Failure(object.StatusCanceled, &object.Detail{
		Message:        "request canceled",
		Resource:       JoinPath(bucket, key),
		FurtherDetails: cause.Error(),
	}, cause)
}

// probe issues the metadata probe for bucket/key and returns the object's
// length. The length is meaningful only when the outcome is OK.
func (d *Driver) probe(ctx context.Context, bucket, key string) (uint64, object.Outcome) {
	var size uint64
	out := d.do(ctx, opProbe, bucket, key, func(ctx context.Context) object.Outcome {
		var o object.Outcome
		size, o = d.backend.Stat(ctx, bucket, key)
		return o
	})
	if !out.IsOK() {
		size = 0
	}
	return size, out
}

// fetch fills buf with bytes [offset, offset+len(buf)) of bucket/key.
func (d *Driver) fetch(ctx context.Context, bucket, key string, offset Addr, buf []byte) object.Outcome {
	out := d.do(ctx, opFetch, bucket, key, func(ctx context.Context) object.Outcome {
		return d.backend.Fetch(ctx, bucket, key, uint64(offset), buf)
	})
	if out.IsOK() {
		d.metrics.RecordBytes(opFetch, int64(len(buf)))
	}
	return out
}
