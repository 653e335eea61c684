package vfd

import "sync/atomic"

// DriverID identifies a driver within a registry. The zero value means "none".
type DriverID int64

// InvalidDriverID is the ID of a driver that has not been registered.
const InvalidDriverID DriverID = 0

// AccessProps is the per-open access context supplied by the host: it records
// which driver is active for a logical file.
//
// The zero value selects no driver. Safe for concurrent use.
type AccessProps struct {
	driver atomic.Int64
}

// NewAccessProps returns access properties selecting the given driver.
func NewAccessProps(id DriverID) *AccessProps {
	p := &AccessProps{}
	p.SetDriver(id)
	return p
}

// SetDriver selects the driver used to open files with these properties.
func (p *AccessProps) SetDriver(id DriverID) {
	p.driver.Store(int64(id))
}

// Driver returns the selected driver, or InvalidDriverID.
func (p *AccessProps) Driver() DriverID {
	if p == nil {
		return InvalidDriverID
	}
	return DriverID(p.driver.Load())
}
