package hook

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// DeltaCell is the host's per-frame delta-time storage.
type DeltaCell interface {
	Load() float64
	Store(v float64)
}

// Float64Cell is a DeltaCell owned by a Go host.
type Float64Cell struct {
	bits atomic.Uint64
}

var _ DeltaCell = (*Float64Cell)(nil)

func (c *Float64Cell) Load() float64 {
	return math.Float64frombits(c.bits.Load())
}

func (c *Float64Cell) Store(v float64) {
	c.bits.Store(math.Float64bits(v))
}

// AddrCell is a DeltaCell at a raw address inside the host image. The address
// must point at a writable, 8-byte aligned float64 for the process lifetime.
type AddrCell struct {
	addr Address
}

var _ DeltaCell = AddrCell{}

// NewAddrCell returns a cell backed by addr.
func NewAddrCell(addr Address) AddrCell {
	return AddrCell{addr: addr}
}

func (c AddrCell) Load() float64 {
	return *(*float64)(unsafe.Pointer(uintptr(c.addr))) //nolint:govet // host-owned memory
}

func (c AddrCell) Store(v float64) {
	*(*float64)(unsafe.Pointer(uintptr(c.addr))) = v //nolint:govet // host-owned memory
}
