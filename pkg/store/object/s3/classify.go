package s3

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	awsretry "github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/marmos91/dittovfd/pkg/store/object"
)

// transientCodes are S3 error codes for which resending the identical
// request may succeed.
var transientCodes = map[string]bool{
	"SlowDown":               true,
	"ServiceUnavailable":     true,
	"InternalError":          true,
	"RequestTimeout":         true,
	"Throttling":             true,
	"ThrottlingException":    true,
	"TooManyRequests":        true,
	"BandwidthLimitExceeded": true,
}

var retryables = awsretry.IsErrorRetryables(awsretry.DefaultRetryables)

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type requestIDer interface {
	ServiceRequestID() string
}

type hostIDer interface {
	ServiceHostID() string
}

// classify turns an SDK error into a failed outcome carrying the error code,
// HTTP status and request identifiers as detail fields.
func classify(ctx context.Context, op, bucket, key string, err error) object.Outcome {
	detail := &object.Detail{
		Message:        err.Error(),
		Resource:       bucket + "/" + key,
		FurtherDetails: err.Error(),
	}
	detail.Add("operation", op)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.ErrorMessage(); msg != "" {
			detail.Message = msg
		}
		detail.Add("code", apiErr.ErrorCode())
		detail.Add("fault", apiErr.ErrorFault().String())
	}
	if code := httpStatus(err); code != 0 {
		detail.Add("http_status", strconv.Itoa(code))
	}
	var rid requestIDer
	if errors.As(err, &rid) {
		detail.Add("request_id", rid.ServiceRequestID())
	}
	var hid hostIDer
	if errors.As(err, &hid) {
		detail.Add("host_id", hid.ServiceHostID())
	}

	return object.Failure(statusOf(ctx, err), detail, err)
}

// statusOf maps an SDK error onto the backend status vocabulary.
func statusOf(ctx context.Context, err error) object.Status {
	var canceled *smithy.CanceledError
	if ctx.Err() != nil ||
		errors.As(err, &canceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return object.StatusCanceled
	}

	var (
		code   string
		apiErr smithy.APIError
	)
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	status := httpStatus(err)

	var (
		noSuchKey    *types.NoSuchKey
		noSuchBucket *types.NoSuchBucket
		notFound     *types.NotFound
	)

	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &noSuchBucket), errors.As(err, &notFound),
		code == "NoSuchKey", code == "NoSuchBucket", code == "NotFound",
		status == http.StatusNotFound:
		return object.StatusNotFound

	case code == "AccessDenied", code == "Forbidden", code == "InvalidAccessKeyId",
		code == "SignatureDoesNotMatch", status == http.StatusForbidden:
		return object.StatusAccessDenied

	case code == "PreconditionFailed", code == "NotModified",
		status == http.StatusPreconditionFailed, status == http.StatusNotModified:
		return object.StatusPreconditionFailed

	case code == "InvalidRange", status == http.StatusRequestedRangeNotSatisfiable:
		return object.StatusInvalidRange

	case transientCodes[code],
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError,
		retryables.IsErrorRetryable(err).Bool():
		return object.StatusTransient

	default:
		return object.StatusFailed
	}
}

func httpStatus(err error) int {
	var coder httpStatusCoder
	if errors.As(err, &coder) {
		return coder.HTTPStatusCode()
	}
	return 0
}
