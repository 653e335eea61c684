package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/marmos91/dittovfd/pkg/vfd"
)

// ErrDriverNotFound indicates no driver is registered under the requested
// name or identifier.
var ErrDriverNotFound = errors.New("driver not found")

// Registry manages the named virtual file drivers of one process and assigns
// their identifiers.
//
// A registry is created at composition time and passed to whatever opens
// files. Identifiers are unique within a registry, start at 1 and are never
// reused, so a stale identifier cannot select a newer driver.
//
// Example usage:
//
//	reg := NewRegistry()
//	id, _ := reg.RegisterDriver("s3-main", s3Driver)
//	reg.SetDefault("s3-main")
//
//	drv, _ := reg.Default()
//	f, _ := drv.Open(ctx, "bucket/key", vfd.OpenReadOnly, vfd.NewAccessProps(id), vfd.MaxAddr)
type Registry struct {
	mu          sync.RWMutex
	drivers     map[string]*vfd.Driver
	byID        map[vfd.DriverID]string
	nextID      vfd.DriverID
	defaultName string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]*vfd.Driver),
		byID:    make(map[vfd.DriverID]string),
		nextID:  1,
	}
}

// RegisterDriver adds a named driver, assigns it an identifier and returns
// the identifier. Closing the driver removes it from the registry.
//
// Returns an error if the name is empty or taken, or if the driver is
// already registered.
func (r *Registry) RegisterDriver(name string, drv *vfd.Driver) (vfd.DriverID, error) {
	if drv == nil {
		return vfd.InvalidDriverID, fmt.Errorf("cannot register nil driver")
	}
	if name == "" {
		return vfd.InvalidDriverID, fmt.Errorf("cannot register driver with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[name]; exists {
		return vfd.InvalidDriverID, fmt.Errorf("driver %q already registered", name)
	}
	if drv.ID() != vfd.InvalidDriverID {
		return vfd.InvalidDriverID, fmt.Errorf("driver %q is already registered with id %d", name, drv.ID())
	}

	id := r.nextID
	r.nextID++

	r.drivers[name] = drv
	r.byID[id] = name
	drv.Bind(id, func() { r.unregister(name, id) })

	if r.defaultName == "" {
		r.defaultName = name
	}
	return id, nil
}

func (r *Registry) unregister(name string, id vfd.DriverID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byID[id] != name {
		return
	}
	delete(r.byID, id)
	delete(r.drivers, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
}

// Unregister closes the named driver, which removes it from the registry.
func (r *Registry) Unregister(name string) error {
	drv, err := r.GetDriver(name)
	if err != nil {
		return err
	}
	return drv.Close()
}

// GetDriver retrieves a driver by name.
func (r *Registry) GetDriver(name string) (*vfd.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drv, exists := r.drivers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrDriverNotFound, name)
	}
	return drv, nil
}

// Lookup retrieves a driver by identifier.
func (r *Registry) Lookup(id vfd.DriverID) (*vfd.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrDriverNotFound, id)
	}
	return r.drivers[name], nil
}

// SetDefault selects the driver returned by Default.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[name]; !exists {
		return fmt.Errorf("%w: %q", ErrDriverNotFound, name)
	}
	r.defaultName = name
	return nil
}

// Default returns the default driver: the one selected by SetDefault, or the
// first one registered.
func (r *Registry) Default() (*vfd.Driver, error) {
	r.mu.RLock()
	name := r.defaultName
	r.mu.RUnlock()

	if name == "" {
		return nil, fmt.Errorf("%w: no default driver", ErrDriverNotFound)
	}
	return r.GetDriver(name)
}

// AccessProps returns access properties selecting the named driver.
func (r *Registry) AccessProps(name string) (*vfd.AccessProps, error) {
	drv, err := r.GetDriver(name)
	if err != nil {
		return nil, err
	}
	return vfd.NewAccessProps(drv.ID()), nil
}

// ListDrivers returns all registered driver names, sorted.
// The returned slice is a copy and safe to modify.
func (r *Registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CountDrivers returns the number of registered drivers.
func (r *Registry) CountDrivers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drivers)
}

// Close closes every registered driver. All drivers are closed even if some
// fail; the errors are joined.
func (r *Registry) Close() error {
	r.mu.RLock()
	drivers := make([]*vfd.Driver, 0, len(r.drivers))
	for _, drv := range r.drivers {
		drivers = append(drivers, drv)
	}
	r.mu.RUnlock()

	var errs []error
	for _, drv := range drivers {
		if err := drv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close driver %q: %w", drv.Name(), err))
		}
	}
	return errors.Join(errs...)
}
