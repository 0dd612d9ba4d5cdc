// Package pmp computes and programs the machine-mode PMP regions that
// bound what M-mode will allow S-mode (and fetches delegated to S-mode) to
// touch (spec.md §4.6, §9 "PMP regions satisfy pmpaddr = (base>>2) |
// ((size>>2) - 1)"). Grounded on the original firmware's set_pmp, which
// this package generalizes from three hardcoded csrw instructions into a
// data table plus a Configure step, the way internal/delegate turns the
// same function's delegation half into a table.
package pmp

import "github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"

// Region describes one NAPOT PMP entry: a naturally-aligned power-of-two
// address range and its R/W/X permissions.
type Region struct {
	Name  string
	Base  uint64
	Size  uint64
	Read  bool
	Write bool
	Exec  bool
}

// addr encodes Base/Size into the NAPOT pmpaddr value (spec.md §9).
func (r Region) addr() uint64 {
	return (r.Base >> 2) | ((r.Size >> 2) - 1)
}

// cfg encodes this region's permission+mode byte for its pmpcfg0 lane.
func (r Region) cfg() uint64 {
	var b uint64
	if r.Read {
		b |= csr.PmpR
	}
	if r.Write {
		b |= csr.PmpW
	}
	if r.Exec {
		b |= csr.PmpX
	}
	b |= csr.PmpNapot
	return b
}

// DefaultRegions is the JH7100 table (spec.md §4.6 platform table, §9):
// peripheral CSR space RW, CLINT RW, DRAM RWX. Order matters: it fixes
// which pmpaddr/pmpcfg0 lane (0, 1, 2) each region lands in.
var DefaultRegions = []Region{
	{Name: "peripheral", Base: 0x1000_0000, Size: 0x800_0000, Read: true, Write: true},
	{Name: "clint", Base: 0x0200_0000, Size: 0x1_0000, Read: true, Write: true},
	{Name: "dram", Base: 0x8000_0000, Size: 0x2_0000_0000, Read: true, Write: true, Exec: true},
}

// Pmpcfg0 packs regions' cfg bytes into a single pmpcfg0 value, one 8-bit
// lane per region (RV64 packs 8 entries per even pmpcfg CSR).
func Pmpcfg0(regions []Region) uint64 {
	var v uint64
	for i, r := range regions {
		v |= r.cfg() << (uint(i) * 8)
	}
	return v
}

// Addrs returns each region's encoded pmpaddr value, in table order.
func Addrs(regions []Region) []uint64 {
	out := make([]uint64, len(regions))
	for i, r := range regions {
		out[i] = r.addr()
	}
	return out
}

// Configure programs pmpcfg0 and pmpaddr0..pmpaddr(len(regions)-1) from
// regions, then fences so the new PMP state is visible to subsequent
// address translation (spec.md §4.6). Callers pass DefaultRegions in the
// firmware path; tests pass a scratch table and assert only on Pmpcfg0 and
// Addrs, never on this function's CSR side effects.
func Configure(regions []Region) {
	csr.WritePmpcfg0(Pmpcfg0(regions))
	for i, addr := range Addrs(regions) {
		csr.WritePmpaddr(i, addr)
	}
	csr.SfenceVMA()
}
