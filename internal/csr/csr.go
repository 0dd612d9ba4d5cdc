// Package csr wraps the machine-level CSR accesses and other privileged
// instructions (wfi, sfence.vma, the MPRV-guarded supervisor load) that
// cannot be expressed in portable Go. The bodies live in asm_riscv64.s;
// this file only declares the signatures and the bit layout constants
// every caller needs (spec.md §4.1, §4.6, §4.7).
package csr

// mstatus fields used by the trap-delegation and PMP-boot paths.
const (
	MstatusSIE = 1 << 1  // supervisor interrupt enable
	MstatusSPIE = 1 << 5 // supervisor previous interrupt enable
	MstatusSPP = 1 << 8  // supervisor previous privilege
	MstatusMPP = 3 << 11 // machine previous privilege mode, 2 bits

	MppU = 0 << 11
	MppS = 1 << 11
	MppM = 3 << 11
)

// mip/mie bits relevant to this firmware.
const (
	MipMSIP = 1 << 3 // machine software interrupt pending
	MipMTIP = 1 << 7 // machine timer interrupt pending
	MipSTIP = 1 << 5 // supervisor timer interrupt pending, set to redirect to S-mode
	MipSSIP = 1 << 1 // supervisor software interrupt pending

	MieMSIE = 1 << 3
	MieMTIE = 1 << 7
	MieMEIE = 1 << 11
)

// mcause values the execute loop classifies (spec.md §3 MachineTrap tag).
// The interrupt bit (bit 63 on RV64) is stripped by
// trapctx.ClassifyMcause before comparison; InterruptBit reconstructs it for callers that need the raw
// encoding (scause write-back in §4.7).
const (
	InterruptBit = 1 << 63

	CauseSupervisorSoft = 1
	CauseMachineSoft    = 3
	CauseMachineTimer   = 7
	CauseEcallFromSMode = 9
	CauseIllegalInstr   = 2
)

// medeleg bits: spec.md §4.6 delegation table.
const (
	MedelegInstrMisaligned  = 1 << 0
	MedelegIllegalInstr     = 1 << 2
	MedelegBreakpoint       = 1 << 3
	MedelegUserEcall        = 1 << 8
	MedelegInstrPageFault   = 1 << 12
	MedelegLoadPageFault    = 1 << 13
	MedelegStorePageFault   = 1 << 15
	MedelegInstrAccessFault = 1 << 1
	MedelegLoadAccessFault  = 1 << 5
	MedelegStoreAccessFault = 1 << 7
)

// mideleg bits: spec.md §4.6 delegation table.
const (
	MidelegSSIP = 1 << 1
	MidelegSTIP = 1 << 5
	MidelegSEIP = 1 << 9
	MidelegUSIP = 1 << 0
	MidelegUTIP = 1 << 4
	MidelegUEIP = 1 << 8
)

// PMP permission/mode bits packed into pmpcfg byte lanes (spec.md §4.6).
const (
	PmpR    = 1 << 0
	PmpW    = 1 << 1
	PmpX    = 1 << 2
	PmpNapot = 3 << 3 // A field = NAPOT
)

// ReadMhartid returns the id of the calling hart.
//
//go:nosplit
func ReadMhartid() uint64

// ReadMcause returns the raw mcause CSR, interrupt bit included.
//
//go:nosplit
func ReadMcause() uint64

// ReadMtval returns mtval, the offending address/value for the trap.
//
//go:nosplit
func ReadMtval() uint64

// ReadMstatus/WriteMstatus access mstatus in full.
//
//go:nosplit
func ReadMstatus() uint64

//go:nosplit
func WriteMstatus(v uint64)

// SetMedeleg ORs bits into medeleg.
//
//go:nosplit
func SetMedeleg(bits uint64)

// SetMideleg ORs bits into mideleg.
//
//go:nosplit
func SetMideleg(bits uint64)

// ReadMedeleg/ReadMideleg read back the delegation CSRs (used by the
// delegation guard in spec.md §4.7).
//
//go:nosplit
func ReadMedeleg() uint64

//go:nosplit
func ReadMideleg() uint64

// SetMie ORs bits into mie; ClearMie clears them.
//
//go:nosplit
func SetMie(bits uint64)

//go:nosplit
func ClearMie(bits uint64)

//go:nosplit
func ReadMie() uint64

// SetMip/ClearMip manipulate the machine interrupt-pending CSR directly
// (only MSIP is writable by software on real hardware; STIP write is used
// to redirect the machine timer trap to S-mode per spec.md §4.3).
//
//go:nosplit
func SetMip(bits uint64)

//go:nosplit
func ClearMip(bits uint64)

//go:nosplit
func ReadMip() uint64

// WritePmpcfg0/WritePmpaddr program the PMP CSRs used by internal/pmp.
//
//go:nosplit
func WritePmpcfg0(v uint64)

//go:nosplit
func WritePmpaddr(index int, v uint64)

// SfenceVMA orders PMP/page-table writes against subsequent address
// translation, per spec.md §4.6.
//
//go:nosplit
func SfenceVMA()

// WriteSatp writes satp (0 disables S-mode translation, spec.md §4.3/§4.4).
//
//go:nosplit
func WriteSatp(v uint64)

// WriteMtvec installs the machine trap vector (spec.md §4.1); ReadMscratch
// and WriteMscratch access mscratch, which internal/coro's trap vector
// uses to hold the current hart's *trapctx.Context.
//
//go:nosplit
func WriteMtvec(v uint64)

//go:nosplit
func ReadMscratch() uint64

//go:nosplit
func WriteMscratch(v uint64)

// ReadSstatus and ClearSstatusSIE manipulate sstatus as seen
// from M-mode (the non-retentive resume path clears SIE per spec.md §4.4).
//
//go:nosplit
func ReadSstatus() uint64

//go:nosplit
func ClearSstatusSIE()

// WriteScause/WriteSepc/WriteStval/ReadStvec implement the trap-transfer
// writes of spec.md §4.7.
//
//go:nosplit
func WriteScause(v uint64)

//go:nosplit
func WriteSepc(v uint64)

//go:nosplit
func WriteStval(v uint64)

//go:nosplit
func ReadStvec() uint64

// Wfi issues the wait-for-interrupt instruction. Per spec.md §4.4 it is
// permitted to be a no-op, so every caller loops on an explicit condition
// rather than relying on wfi alone to block.
//
//go:nosplit
func Wfi()

// LoadU32MPRV reads a 32-bit word at vaddr using the faulting privilege
// mode's translation by briefly setting mstatus.MPRV (spec.md §4.3). Used
// to fetch the instruction word behind an IllegalInstruction trap.
//
//go:nosplit
func LoadU32MPRV(vaddr uintptr) uint32
