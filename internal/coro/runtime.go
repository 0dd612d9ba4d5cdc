// Package coro implements the resumable runtime of spec.md §4.2: a
// coroutine-shaped object that alternates between running S-mode and
// reporting a classified trap to its caller. Grounded on mazboot's split
// between a Go-callable entry point and the assembly that actually
// crosses the privilege boundary (mazboot/main/exceptions.go's
// InitializeExceptions/ExceptionHandler pair); the coroutine contract
// itself follows spec.md's Design Notes item 1 rather than mazboot's
// goroutine-hijacking machinery, which this firmware has no use for — a
// single resumable loop per hart is all spec.md's HSM needs.
package coro

import (
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/trapctx"
)

// MaxHarts bounds the per-hart scratch arrays the assembly trampoline
// indexes by mhartid. The JH7100 is dual-hart (spec.md §1); the bound is
// kept a little generous. The assembly does not check mhartid against
// it, so a hart id of MaxHarts or more writes past the end of the arrays.
const MaxHarts = 8

// hostSP and trapCause are read and written directly by asm_riscv64.s,
// indexed by mhartid; they must stay plain package-level arrays (no
// wrapping struct) so the assembly's address arithmetic is just "base +
// hartid*8".
var hostSP [MaxHarts]uint64
var trapCause [MaxHarts]uint64

// resumeTrampoline and trapReturn are implemented in asm_riscv64.s.
// trapVector is installed at mtvec by Init and is never called directly
// from Go.
//
//go:noescape
func resumeTrampoline(ctx *trapctx.Context) (mcause uint64)

func trapReturn()
func trapVector()

// trapVectorAddr returns the address of the installed trap vector, for
// Init to hand to csr.WriteMtvec without Go code ever calling trapVector
// as a function (it is only ever reached by hardware trap dispatch).
func trapVectorAddr() uintptr

// Init installs the machine trap vector in direct mode. Must run once per
// hart before the first Resume call on that hart (spec.md §4.1).
func Init() {
	csr.WriteMtvec(uint64(trapVectorAddr()))
}

// Runtime is the per-hart coroutine of spec.md §4.2: one instance is live
// per hart for as long as that hart is STARTED.
type Runtime struct {
	ctx    trapctx.Context
	hartID uint64
}

// New creates a Runtime primed to enter S-mode at supervisorEntry with
// a0=hartID, a1=opaque — the register contract for both cold boot
// (spec.md §8 scenario 1) and a non-retentive resume (spec.md §4.3/§4.4).
func New(hartID, supervisorEntry, opaque uint64) *Runtime {
	rt := &Runtime{hartID: hartID}
	rt.ctx.SetA0(hartID)
	rt.ctx.SetA1(opaque)
	rt.ctx.Mepc = supervisorEntry
	return rt
}

// Context returns the mutable SupervisorContext backing this hart's
// S-mode state. Between a Yielded return from Resume and the next call to
// Resume, this is the sole authoritative copy of S-mode register state
// (spec.md §4.2).
func (rt *Runtime) Context() *trapctx.Context {
	return &rt.ctx
}

// Yielded reports the classified trap that interrupted the last Resume
// call. Spec.md §4.2's "Complete" state is never produced by this
// firmware — harts that stop park in the HSM instead of ending their
// coroutine — so Resume's return type omits it and always yields.
type Yielded struct {
	Kind trapctx.TrapKind
}

// Resume enters S-mode (or re-enters it after a prior yield's handler has
// mutated the context) and blocks until the hart traps, classifying the
// cause via mcause. This is the only place a privilege-mode switch
// happens; everything else in this firmware only ever touches ctx between
// calls.
func (rt *Runtime) Resume() Yielded {
	mcause := resumeTrampoline(&rt.ctx)
	kind, ok := trapctx.ClassifyMcause(mcause, csr.InterruptBit,
		csr.CauseEcallFromSMode, csr.CauseIllegalInstr, csr.CauseMachineTimer, csr.CauseMachineSoft)
	if !ok {
		// A cause the trap vector was never supposed to see reached
		// here: medeleg/mideleg was set up wrong, which is a boot bug,
		// not a recoverable runtime condition (spec.md §4.6 guard).
		panic("coro: trap vector delivered an unclassifiable mcause")
	}
	return Yielded{Kind: kind}
}
