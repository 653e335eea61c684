package vfd

// Addr is a byte address in the logical file's address space.
//
// Addresses are unsigned, but the offsets used by every transport are signed
// 64-bit integers, so only the low 63 bits are usable (see MaxAddr).
type Addr uint64

const (
	// AddrUndef is the sentinel "undefined address".
	AddrUndef Addr = ^Addr(0)

	// MaxAddr is the largest address representable by a signed 64-bit offset.
	MaxAddr Addr = 1<<63 - 1
)

// Defined reports whether a is not the undefined sentinel.
func (a Addr) Defined() bool {
	return a != AddrUndef
}

// AddrOverflow reports whether a cannot be used as a transport offset:
// it is undefined or has a bit set above MaxAddr.
func AddrOverflow(a Addr) bool {
	return a == AddrUndef || a&^MaxAddr != 0
}

// SizeOverflow reports whether z has a bit set above MaxAddr.
func SizeOverflow(z uint64) bool {
	return z&^uint64(MaxAddr) != 0
}

// RegionOverflow reports whether the region [a, a+z) cannot be addressed
// entirely by a signed 64-bit offset.
//
// The region overflows if either bound overflows on its own, if the end lands
// on the undefined sentinel, or if the end wraps below the start when both
// are read as signed offsets.
func RegionOverflow(a Addr, z uint64) bool {
	end := a + Addr(z)
	return AddrOverflow(a) ||
		SizeOverflow(z) ||
		end == AddrUndef ||
		int64(end) < int64(a)
}
