package vfd

import (
	"errors"
	"fmt"
)

// ============================================================================
// Driver Errors
// ============================================================================

// Argument and configuration errors abort an operation before any request is
// issued. Transport failures surface from Read as ErrIO (and from Open as
// ErrOpen under the fail_open policy) wrapping the backend's
// object.StatusError, so the status remains available to errors.Is.

var (
	// ErrInvalidArgument indicates a bad argument: empty path, undefined address, ...
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOverflow indicates an address/size pair outside the representable range.
	// It also matches ErrInvalidArgument.
	ErrOverflow = fmt.Errorf("%w: address overflow", ErrInvalidArgument)

	// ErrDriverNotSelected indicates Open was called with access properties
	// that select a different (or no) driver.
	ErrDriverNotSelected = errors.New("driver not selected in access properties")

	// ErrNotSupported indicates an operation this driver does not implement
	// (write, flush, truncate, and opening for write).
	ErrNotSupported = errors.New("operation not supported by this driver")

	// ErrIO indicates a read that could not be served.
	ErrIO = errors.New("i/o failure")

	// ErrOpen indicates the metadata probe failed and the driver is configured
	// to fail the open.
	ErrOpen = errors.New("unable to open file")

	// ErrClosed indicates an operation on a closed file or driver.
	ErrClosed = errors.New("file already closed")
)
