package object

import (
	"errors"
	"fmt"
	"strings"
)

// Status classifies the terminal result of a single backend request.
type Status int

const (
	StatusOK Status = iota
	StatusPreconditionFailed
	StatusNotFound
	StatusAccessDenied
	StatusInvalidRange
	StatusTransient
	StatusCanceled
	StatusRetriesExhausted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusPreconditionFailed:
		return "PreconditionFailed"
	case StatusNotFound:
		return "NotFound"
	case StatusAccessDenied:
		return "AccessDenied"
	case StatusInvalidRange:
		return "InvalidRange"
	case StatusTransient:
		return "Transient"
	case StatusCanceled:
		return "Canceled"
	case StatusRetriesExhausted:
		return "RetriesExhausted"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Retryable reports whether resending the identical request may succeed.
func (s Status) Retryable() bool {
	return s == StatusTransient
}

// Sentinel returns the package error matching s, or nil for StatusOK.
func (s Status) Sentinel() error {
	switch s {
	case StatusOK:
		return nil
	case StatusPreconditionFailed:
		return ErrPreconditionFailed
	case StatusNotFound:
		return ErrNotFound
	case StatusAccessDenied:
		return ErrAccessDenied
	case StatusInvalidRange:
		return ErrInvalidRange
	case StatusTransient:
		return ErrTransient
	case StatusCanceled:
		return ErrCanceled
	case StatusRetriesExhausted:
		return ErrRetriesExhausted
	default:
		return ErrFailed
	}
}

// Field is one name/value pair of extra diagnostic information.
type Field struct {
	Name  string
	Value string
}

// Detail is the structured diagnostic attached to a failed request.
//
// It grows as needed; nothing is truncated.
type Detail struct {
	// Message is the primary, human-readable error message
	Message string

	// Resource identifies what the request addressed (usually "bucket/key")
	Resource string

	// FurtherDetails carries extended diagnostic text (usually the raw error)
	FurtherDetails string

	// Extra holds backend-specific name/value pairs (error code, request id, ...)
	Extra []Field
}

// Add appends an extra field. Empty values are skipped.
func (d *Detail) Add(name, value string) {
	if value == "" {
		return
	}
	d.Extra = append(d.Extra, Field{Name: name, Value: value})
}

// String renders the detail in the multi-line layout used for log output.
func (d *Detail) String() string {
	if d == nil {
		return ""
	}

	var b strings.Builder
	if d.Message != "" {
		fmt.Fprintf(&b, "  Message: %s\n", d.Message)
	}
	if d.Resource != "" {
		fmt.Fprintf(&b, "  Resource: %s\n", d.Resource)
	}
	if d.FurtherDetails != "" {
		fmt.Fprintf(&b, "  Further Details: %s\n", d.FurtherDetails)
	}
	if len(d.Extra) > 0 {
		b.WriteString("  Extra Details:\n")
		for _, f := range d.Extra {
			fmt.Fprintf(&b, "    %s: %s\n", f.Name, f.Value)
		}
	}
	return b.String()
}

// Outcome is the per-call result of a backend request: a status code plus,
// on failure, a structured detail and the underlying cause.
//
// Outcomes are values returned by each call. They are never stored in shared
// state, so concurrent requests cannot observe each other's results.
type Outcome struct {
	Status Status
	Detail *Detail
	Cause  error

	// Attempts is the number of requests issued to reach this outcome.
	// Backends report 1; the retry loop in the driver overwrites it.
	Attempts int
}

// OK returns a successful outcome.
func OK() Outcome {
	return Outcome{Status: StatusOK, Attempts: 1}
}

// Failure builds a failed outcome.
func Failure(status Status, detail *Detail, cause error) Outcome {
	return Outcome{Status: status, Detail: detail, Cause: cause, Attempts: 1}
}

// IsOK reports whether the request succeeded.
func (o Outcome) IsOK() bool {
	return o.Status == StatusOK
}

// Err converts the outcome into an error, or nil on success.
//
// The returned error matches both Status.Sentinel() and Cause with errors.Is.
func (o Outcome) Err() error {
	if o.IsOK() {
		return nil
	}
	return &StatusError{Status: o.Status, Detail: o.Detail, Cause: o.Cause}
}

// StatusError is the error form of a failed Outcome.
type StatusError struct {
	Status Status
	Detail *Detail
	Cause  error
}

func (e *StatusError) Error() string {
	msg := e.Status.String()
	if e.Detail != nil && e.Detail.Resource != "" {
		msg += " (" + e.Detail.Resource + ")"
	}
	if e.Detail != nil && e.Detail.Message != "" {
		msg += ": " + e.Detail.Message
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() []error {
	errs := []error{e.Status.Sentinel()}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// StatusOf extracts the Status carried by err, or StatusFailed if err is not
// a StatusError. A nil err is StatusOK.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusFailed
}
