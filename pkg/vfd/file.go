package vfd

import (
	"cmp"
	"context"
	"fmt"
	"sync"
)

// Op is the last operation performed on a file. Diagnostic only.
type Op int

const (
	OpUnknown Op = iota
	OpRead
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	default:
		return "unknown"
	}
}

// File is one open remote object.
//
// Bucket and key are fixed at open. EOF is the object size observed by the
// probe at open and is never refreshed; EOA is whatever the host last set.
type File struct {
	driver *Driver
	bucket string
	key    string

	mu     sync.Mutex
	eoa    Addr
	eof    Addr
	op     Op
	closed bool
}

// Bucket returns the bucket the file was opened from.
func (f *File) Bucket() string { return f.bucket }

// Key returns the object key the file was opened from.
func (f *File) Key() string { return f.key }

// Name returns the virtual path of the file.
func (f *File) Name() string { return JoinPath(f.bucket, f.key) }

// Driver returns the driver that opened the file.
func (f *File) Driver() *Driver { return f.driver }

// LastOp returns the last operation recorded on the file.
func (f *File) LastOp() Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.op
}

// EOA returns the end-of-address most recently set by the host (0 after open).
func (f *File) EOA() Addr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eoa
}

// SetEOA stores addr as the end-of-address. No validation against EOF is done.
func (f *File) SetEOA(addr Addr) {
	f.mu.Lock()
	f.eoa = addr
	f.mu.Unlock()
}

// EOF returns the end of the file as seen by the host: the larger of the
// stored object size and EOA.
func (f *File) EOF() Addr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return max(f.eof, f.eoa)
}

// Size returns the object size observed at open.
func (f *File) Size() Addr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eof
}

// Compare orders files by bucket, then by key. It returns -1, 0 or +1.
func (f *File) Compare(other *File) int {
	if c := cmp.Compare(f.bucket, other.bucket); c != 0 {
		return c
	}
	return cmp.Compare(f.key, other.key)
}

// Query returns the file's capability flags.
func (f *File) Query() Feature {
	return DefaultFeatures
}

// Read fills buf with len(buf) bytes of the object starting at addr.
//
// The region is validated before any request is issued; an undefined or
// overflowing region fails with ErrOverflow (which matches
// ErrInvalidArgument). Transport failures surface as ErrIO wrapping the
// backend's object.StatusError. Bytes past the end of the stored object are
// zero. The contents of buf are undefined on failure.
func (f *File) Read(ctx context.Context, addr Addr, buf []byte) error {
	if RegionOverflow(addr, uint64(len(buf))) {
		return fmt.Errorf("%w: addr = %d, size = %d", ErrOverflow, uint64(addr), len(buf))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.driver.closed.Load() {
		return ErrClosed
	}

	if len(buf) == 0 {
		return nil
	}

	f.op = OpRead
	out := f.driver.fetch(ctx, f.bucket, f.key, addr, buf)
	if !out.IsOK() {
		f.op = OpUnknown
		f.driver.logOutcome(opFetch, out)
		return fmt.Errorf("%w: read %s at %d: %w", ErrIO, f.Name(), uint64(addr), out.Err())
	}

	return nil
}

// Write is not supported.
func (f *File) Write(ctx context.Context, addr Addr, buf []byte) error {
	return fmt.Errorf("%w: write", ErrNotSupported)
}

// Flush is not supported.
func (f *File) Flush(ctx context.Context) error {
	return fmt.Errorf("%w: flush", ErrNotSupported)
}

// Truncate is not supported.
func (f *File) Truncate(ctx context.Context) error {
	return fmt.Errorf("%w: truncate", ErrNotSupported)
}

// Close releases the file. No request is issued. Closing twice returns
// ErrClosed.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	f.closed = true
	f.driver.metrics.OpenFiles(f.driver.name, -1)
	return nil
}
