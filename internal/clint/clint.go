// Package clint drives the Core-Local Interruptor block: per-hart software
// interrupt pending bits (msip), per-hart timer compare registers
// (mtimecmp), and the free-running mtime counter (spec.md §4.6 platform
// table, §3 Platform field). This is the only path by which one hart wakes
// another (spec.md §4.4 pause/resume, §5 mailbox+IPI ordering).
//
// Register layout is grounded on mazboot's raw mmio_read/mmio_write split
// (mazarin/kernel.go), adapted to a same-package volatile accessor since
// there is no existing runtime to //go:linkname into for this firmware.
package clint

import "unsafe"

// Layout is the CLINT's register geometry (spec.md §4.6): msip[i] at
// base+4*i, mtimecmp[i] at base+0x4000+8*i, mtime at base+0xBFF8.
type Layout struct {
	Base uintptr
}

// DefaultLayout is the JH7100 CLINT base from spec.md §4.6's platform table.
var DefaultLayout = Layout{Base: 0x0200_0000}

const (
	msipStride     = 4
	mtimecmpOffset = 0x4000
	mtimecmpStride = 8
	mtimeOffset    = 0xBFF8
)

func (l Layout) msipAddr(hart uint64) uintptr {
	return l.Base + uintptr(hart)*msipStride
}

func (l Layout) mtimecmpAddr(hart uint64) uintptr {
	return l.Base + mtimecmpOffset + uintptr(hart)*mtimecmpStride
}

func (l Layout) mtimeAddr() uintptr {
	return l.Base + mtimeOffset
}

func load32(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}

func store32(addr uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(addr)) = v
}

func load64(addr uintptr) uint64 {
	return *(*uint64)(unsafe.Pointer(addr))
}

func store64(addr uintptr, v uint64) {
	*(*uint64)(unsafe.Pointer(addr)) = v
}

// CLINT is the MMIO-backed implementation used by the firmware at runtime.
// internal/sbi and internal/hsm depend on the Device interface below rather
// than this type directly, so tests can substitute a plain memory fake
// (spec.md §9's testability requirement for every platform shim).
type CLINT struct {
	layout Layout
}

// New returns a CLINT bound to l. Callers in the firmware path use
// DefaultLayout; tests use NewFake instead of this type.
func New(l Layout) *CLINT {
	return &CLINT{layout: l}
}

// Device is the CLINT surface internal/hsm and internal/emulate consume.
// Keeping it an interface, rather than exporting *CLINT everywhere, is what
// lets tests swap in a Fake without touching real MMIO addresses.
type Device interface {
	SetSoftwarePending(hart uint64)
	ClearSoftwarePending(hart uint64)
	SoftwarePending(hart uint64) bool
	SetTimerCompare(hart uint64, cmp uint64)
	Time() uint64
}

func (c *CLINT) SetSoftwarePending(hart uint64) {
	store32(c.layout.msipAddr(hart), 1)
}

func (c *CLINT) ClearSoftwarePending(hart uint64) {
	store32(c.layout.msipAddr(hart), 0)
}

func (c *CLINT) SoftwarePending(hart uint64) bool {
	return load32(c.layout.msipAddr(hart))&1 != 0
}

func (c *CLINT) SetTimerCompare(hart uint64, cmp uint64) {
	store64(c.layout.mtimecmpAddr(hart), cmp)
}

func (c *CLINT) Time() uint64 {
	return load64(c.layout.mtimeAddr())
}

var _ Device = (*CLINT)(nil)
