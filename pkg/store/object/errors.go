package object

import "errors"

// ============================================================================
// Standard Object Backend Errors
// ============================================================================

// These errors give every backend variant the same vocabulary for terminal
// request outcomes. Each Status maps to exactly one of them (see
// Status.Sentinel), so callers can test outcomes with errors.Is regardless of
// which backend produced them.
//
// Usage Pattern:
//
//	size, out := backend.Stat(ctx, bucket, key)
//	if err := out.Err(); err != nil {
//	    if errors.Is(err, object.ErrNotFound) {
//	        ...
//	    }
//	}

var (
	// ErrNotFound indicates the bucket or the object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrAccessDenied indicates the credentials are not allowed to read the object.
	ErrAccessDenied = errors.New("access denied")

	// ErrPreconditionFailed indicates a conditional request was not satisfied.
	//
	// The open path treats this outcome like success: the object exists and the
	// response still carried its attributes.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidRange indicates the requested range starts past the end of the object.
	ErrInvalidRange = errors.New("invalid range")

	// ErrTransient indicates a failure that may succeed if the identical request is resent.
	ErrTransient = errors.New("transient failure")

	// ErrCanceled indicates the request was abandoned because its context ended.
	ErrCanceled = errors.New("request canceled")

	// ErrRetriesExhausted indicates every allowed attempt ended in a transient failure.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrFailed is the catch-all for terminal failures without a finer classification.
	ErrFailed = errors.New("request failed")

	// ErrCursorOverflow indicates a backend delivered more bytes than the
	// destination buffer can hold.
	ErrCursorOverflow = errors.New("cursor overflow")

	// ErrInvalidName indicates an empty bucket name was passed to a backend.
	ErrInvalidName = errors.New("invalid bucket name")
)
