// Package uart drives the memory-mapped 16550-style console (spec.md §6
// Console). Register access follows the same raw-pointer style
// internal/clint uses, grounded on mazboot's mmio_read/mmio_write split
// (mazarin/kernel.go) and on the register offsets and init sequence of the
// original firmware's peripheral/uart.rs.
package uart

import "unsafe"

// Base is the JH7100's UART0 address (spec.md §6).
const Base uintptr = 0x1244_0000

// Register offsets, 4-byte stride (spec.md §6).
const (
	regTHR = 0x00 // transmit holding / receive data, write side
	regRDR = 0x00 // receive data, read side
	regIER = 0x01
	regFCR = 0x02
	regLCR = 0x03
	regMDC = 0x04
	regLSR = 0x05
)

const (
	lcrDLAB = 0x80
	lcrCS8  = 0x03
	lcr1Stb = 0x01

	fcrFIFO    = 0x01
	fcrRCVRClr = 0x02
	fcrXmitClr = 0x04
	fcrMode1   = 0x08
	fcrFIFO8   = 0x80

	lsrDR   = 1 << 0
	lsrTHRE = 1 << 5
)

const (
	clockHz  = 100_000_000
	baudRate = 115200
)

func reg(base uintptr, offset uintptr) uintptr {
	return base + offset*4
}

func load(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}

func store(addr uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(addr)) = v
}

// UART is the polling-mode 16550 console driver bound during boot (spec.md
// §4.5 step "bind stdio"). There is exactly one instance per firmware image.
// Byte access across harts is not serialized: neither this driver nor
// internal/sbi's legacy console extension takes a lock, so bytes written
// from two harts at the same time can interleave.
type UART struct {
	base uintptr
}

// New returns a UART at base without touching hardware; call Init once
// before using it.
func New(base uintptr) *UART {
	return &UART{base: base}
}

// Init runs the init sequence from spec.md §6: set DLAB, program the baud
// divisor, restore LCR to 8N1, disable flow control, enable and clear the
// FIFOs, and mask UART interrupts (the console is polled, never interrupt
// driven, per spec.md §4.3).
func (u *UART) Init() {
	divisor := uint32(clockHz/baudRate) >> 4

	lcrCache := load(reg(u.base, regLCR))
	store(reg(u.base, regLCR), lcrDLAB|lcrCache)
	store(reg(u.base, 0x00), divisor&0xff)        // BRDL aliases THR/RDR while DLAB is set
	store(reg(u.base, 0x01), (divisor>>8)&0xff)    // BRDH aliases IER while DLAB is set
	store(reg(u.base, regLCR), lcrCache)

	store(reg(u.base, regLCR), lcrCS8|lcr1Stb)
	store(reg(u.base, regMDC), 0)
	store(reg(u.base, regFCR), fcrFIFO|fcrMode1|fcrFIFO8|fcrRCVRClr|fcrXmitClr)
	store(reg(u.base, regIER), 0)
}

// PutChar blocks until the transmit holding register is empty, then writes
// one byte (spec.md §6 "TX polls LSR.THRE").
func (u *UART) PutChar(c byte) {
	for load(reg(u.base, regLSR))&lsrTHRE == 0 {
	}
	store(reg(u.base, regTHR), uint32(c))
}

// GetChar returns a byte and ok=true if one was waiting in the receive
// FIFO, without blocking (spec.md §6 "RX polls LSR.DR"; the legacy
// console_getchar extension returns -1 rather than blocking when empty).
func (u *UART) GetChar() (byte, bool) {
	if load(reg(u.base, regLSR))&lsrDR == 0 {
		return 0, false
	}
	return byte(load(reg(u.base, regRDR))), true
}

// WriteString writes s one byte at a time, translating \n to \r\n the way
// the banner and panic paths expect a plain terminal to render it.
func (u *UART) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			u.PutChar('\r')
		}
		u.PutChar(s[i])
	}
}
