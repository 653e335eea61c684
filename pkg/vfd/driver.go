// Package vfd implements a virtual file driver that presents an object in a
// bucket/key-addressed store as a random-access, byte-addressable file.
//
// A Driver is bound to one object.Backend (S3, local filesystem, memory or
// BadgerDB). Opening "bucket/key" probes the object's size; reads at
// arbitrary addresses are served by ranged fetches. Both requests are
// retried with bounded exponential backoff while the backend reports a
// transient status.
//
// Example:
//
//	reg := registry.NewRegistry()
//	drv, _ := vfd.NewDriver(backend, vfd.Options{})
//	id, _ := reg.RegisterDriver("s3", drv)
//
//	f, err := drv.Open(ctx, "mybucket/data/object1", vfd.OpenReadOnly, vfd.NewAccessProps(id), vfd.MaxAddr)
//	buf := make([]byte, 200)
//	err = f.Read(ctx, 100, buf)
package vfd

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/marmos91/dittovfd/internal/logger"
	"github.com/marmos91/dittovfd/internal/retry"
	"github.com/marmos91/dittovfd/pkg/store/object"
)

// DefaultDriverName is the name of the remote object-storage driver.
const DefaultDriverName = "s3"

// ProbeErrorPolicy decides what Open does when the metadata probe ends in a
// status other than OK or PreconditionFailed.
type ProbeErrorPolicy string

const (
	// ProbeErrorZeroSize logs the failure and opens the file with EOF 0.
	ProbeErrorZeroSize ProbeErrorPolicy = "zero_size"

	// ProbeErrorFailOpen logs the failure and fails the open with ErrOpen.
	ProbeErrorFailOpen ProbeErrorPolicy = "fail_open"
)

// OpenFlags mirror the host framework's file access flags.
type OpenFlags uint

const (
	OpenReadOnly  OpenFlags = 0x0000
	OpenReadWrite OpenFlags = 0x0001
	OpenTruncate  OpenFlags = 0x0002
	OpenExclusive OpenFlags = 0x0004
	OpenCreate    OpenFlags = 0x0010
)

const writeFlags = OpenReadWrite | OpenTruncate | OpenExclusive | OpenCreate

// Options configures a Driver.
type Options struct {
	// Name is the driver name reported to the host (default: "s3")
	Name string

	// Retry bounds the retries of probes and fetches
	// (default: retry.DefaultConfig())
	Retry retry.Config

	// OnProbeError selects the open behaviour when the probe fails
	// (default: ProbeErrorZeroSize)
	OnProbeError ProbeErrorPolicy

	// Metrics receives request observations (default: no-op)
	Metrics Metrics

	// Limiter throttles requests to the backend; every attempt takes one
	// token (default: unlimited)
	Limiter RequestLimiter
}

// RequestLimiter paces outbound requests. *ratelimiter.RateLimiter
// implements it.
type RequestLimiter interface {
	Wait(ctx context.Context) error
}

// Driver is the facade the host framework calls into. It composes the path
// resolver, bounds checker, metadata probe and ranged fetch engine over a
// single backend.
//
// Thread Safety:
// A Driver is safe for concurrent use. Each File is meant to be used by one
// call at a time, but different files may be used concurrently.
type Driver struct {
	id           atomic.Int64
	name         string
	backend      object.Backend
	retry        retry.Config
	onProbeError ProbeErrorPolicy
	metrics      Metrics
	limiter      RequestLimiter

	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func()
}

// NewDriver creates a driver reading from backend.
//
// The driver is not usable until a registry assigns it an ID (see
// registry.Registry.RegisterDriver); until then Open reports
// ErrDriverNotSelected.
func NewDriver(backend object.Backend, opts Options) (*Driver, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	if opts.Name == "" {
		opts.Name = DefaultDriverName
	}
	if opts.Retry.MaxAttempts == 0 {
		def := retry.DefaultConfig()
		opts.Retry.MaxAttempts = def.MaxAttempts
		if opts.Retry.MaxBackoff == 0 {
			opts.Retry.MaxBackoff = def.MaxBackoff
		}
	}

	switch opts.OnProbeError {
	case "":
		opts.OnProbeError = ProbeErrorZeroSize
	case ProbeErrorZeroSize, ProbeErrorFailOpen:
	default:
		return nil, fmt.Errorf("unknown probe error policy %q", opts.OnProbeError)
	}

	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}

	return &Driver{
		name:         opts.Name,
		backend:      backend,
		retry:        opts.Retry,
		onProbeError: opts.OnProbeError,
		metrics:      opts.Metrics,
		limiter:      opts.Limiter,
	}, nil
}

// ID returns the identifier assigned by the registry, or InvalidDriverID.
func (d *Driver) ID() DriverID {
	return DriverID(d.id.Load())
}

// Bind assigns the registry identifier and an optional hook run once when the
// driver is closed. Called by the registry; not meant for direct use.
func (d *Driver) Bind(id DriverID, onClose func()) {
	d.id.Store(int64(id))
	d.onClose = onClose
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return d.name
}

// MaxAddr returns the largest address the driver can serve.
func (d *Driver) MaxAddr() Addr {
	return MaxAddr
}

// Features returns the capability flags of files opened by this driver.
func (d *Driver) Features() Feature {
	return DefaultFeatures
}

// ProbeErrorPolicy returns the configured open behaviour on probe failure.
func (d *Driver) ProbeErrorPolicy() ProbeErrorPolicy {
	return d.onProbeError
}

// Open opens the object addressed by name ("<bucket>/<key...>").
//
// The object's size is probed once and becomes the file's EOF; EOA starts at
// zero. Under the default zero_size policy a failed probe is logged and the
// file still opens with EOF 0.
//
// Parameters:
//   - ctx: Context for the probe request and its retries
//   - name: Virtual path
//   - flags: Access flags; only read-only access is supported
//   - props: Access properties; must select this driver
//   - maxAddr: Host's maximum address (accepted, not enforced)
//
// Returns:
//   - *File: Open file handle
//   - error: ErrInvalidArgument, ErrDriverNotSelected, ErrNotSupported,
//     ErrClosed, or ErrOpen (fail_open policy only)
func (d *Driver) Open(ctx context.Context, name string, flags OpenFlags, props *AccessProps, maxAddr Addr) (*File, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}

	bucket, key, err := ParsePath(name)
	if err != nil {
		return nil, err
	}

	if d.ID() == InvalidDriverID || props.Driver() != d.ID() {
		return nil, fmt.Errorf("%w: can't open %q, select driver %q first", ErrDriverNotSelected, name, d.name)
	}

	if flags&writeFlags != 0 {
		return nil, fmt.Errorf("%w: open %q for writing", ErrNotSupported, name)
	}

	size, out := d.probe(ctx, bucket, key)
	switch out.Status {
	case object.StatusOK, object.StatusPreconditionFailed:
	default:
		d.logOutcome("probe", out)
		if d.onProbeError == ProbeErrorFailOpen {
			return nil, fmt.Errorf("%w: %s: %w", ErrOpen, name, out.Err())
		}
		size = 0
	}

	logger.Debug("Opened %s/%s (driver %s, eof %d)", bucket, key, d.name, size)
	d.metrics.OpenFiles(d.name, 1)

	return &File{
		driver: d,
		bucket: bucket,
		key:    key,
		eof:    Addr(size),
		op:     OpUnknown,
	}, nil
}

// Close terminates the driver: the backend is closed and the driver is
// removed from its registry. Files still open keep their identity but every
// further read fails.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		if d.onClose != nil {
			d.onClose()
		}
		err = d.backend.Close()
	})
	return err
}
