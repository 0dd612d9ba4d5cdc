// Package execute drives one hart's resumable runtime: resume into
// S-mode, classify the trap that brings control back, dispatch it, repeat
// (spec.md §4.2 Design Notes item 1, §4.3 execute loop).
//
// Grounded directly on the original firmware's execute_supervisor match
// over GeneratorState::Yielded(MachineTrap::...) (execute.rs): the four
// arms here are the same four trap kinds, handled the same way, just
// spelled as a Go switch over trapctx.TrapKind instead of a Rust pattern
// match over a generator state.
package execute

import (
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/clint"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/coro"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/emulate"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/hsm"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbi"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/trapctx"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/uart"
)

// Loop owns one hart's coroutine and the platform handles its trap
// handlers need: the HSM monitor (mailbox inspection, pause/park), the
// CLINT (clearing this hart's own soft-pending bit) and a logger for the
// fatal path. internal/sbi's Providers are bound globally once at boot
// and reached through sbi.Ecall, not stored here again.
type Loop struct {
	rt     *coro.Runtime
	hartID uint64
	hsm    *hsm.Monitor
	clint  clint.Device
	log    *uart.Logger
}

// New returns a Loop ready to drive rt. log may be nil; a nil logger
// silently drops fatal diagnostics instead of printing them, which keeps
// tests that never expect to reach the fatal path simple.
func New(rt *coro.Runtime, hartID uint64, mon *hsm.Monitor, dev clint.Device, log *uart.Logger) *Loop {
	return &Loop{rt: rt, hartID: hartID, hsm: mon, clint: dev, log: log}
}

// Run resumes the runtime forever and never returns: a fatal condition
// halts the hart inside l.fatal instead of unwinding back here — spec.md
// §4.2's "Complete" generator state is never produced by this firmware,
// so there is no normal exit.
func (l *Loop) Run() {
	for {
		l.Step()
	}
}

// Step resumes the runtime once and dispatches whatever trap it yields.
func (l *Loop) Step() {
	y := l.rt.Resume()
	ctx := l.rt.Context()
	switch y.Kind {
	case trapctx.SbiCall:
		l.handleSbiCall(ctx)
	case trapctx.IllegalInstruction:
		l.handleIllegalInstruction(ctx)
	case trapctx.MachineTimer:
		l.handleMachineTimer(ctx)
	case trapctx.MachineSoft:
		l.handleMachineSoft(ctx)
	}
}

// handleSbiCall dispatches through internal/sbi and writes the result
// back per spec.md §6's calling convention, unless the dispatcher
// returned the 0x233 non-retentive sentinel (hart_stop's eventual
// restart, or a non-retentive hart_suspend), in which case the context
// is rewritten for a fresh supervisor entry instead (spec.md §4.3, §4.4).
// Legacy extensions (IDs 0x00-0x08) get their raw value in a0 and a1=0.
// A successful set_timer (TIME, or legacy 0x00) also clears mip.STIP and
// unmasks mie.MTIE so the newly programmed compare fires at M-level.
func (l *Loop) handleSbiCall(ctx *trapctx.Context) {
	ext := ctx.A7()
	result := sbi.Ecall(ext, ctx.A6(), ctx.Args())
	if result.Error == sbierr.NonRetentive {
		cmd, ok := l.hsm.TakeCommand(l.hartID)
		if !ok || cmd.Kind != hsm.CommandStart {
			l.fatal("non-retentive sentinel with no pending resume command")
			return
		}
		l.hsm.Resumed(l.hartID)
		l.rewriteForResume(ctx, cmd)
		return
	}
	if result.Error == sbierr.Success && (ext == sbi.ExtTime || ext == 0x00) {
		csr.ClearMip(csr.MipSTIP)
		csr.SetMie(csr.MieMTIE)
	}
	if ext <= 0x08 {
		ctx.SetA0(result.Value)
		ctx.SetA1(0)
	} else {
		ctx.SetA0(uint64(result.Error))
		ctx.SetA1(result.Value)
	}
	ctx.Mepc += 4
}

// handleIllegalInstruction fetches the offending word under mstatus.MPRV
// and tries to emulate it as rdtime/rdtimeh (spec.md §4.3, §9). A shape it
// doesn't recognize is transferred to S-mode only if medeleg says so;
// this firmware's boot-time delegation table never sets that bit (see
// internal/delegate), so in practice an unemulated illegal instruction is
// always fatal — matching the original firmware's fail_illegal_instruction
// panic — but the guard is written generically rather than hardcoded, per
// spec.md §7's "when safe" wording.
func (l *Loop) handleIllegalInstruction(ctx *trapctx.Context) {
	ins := csr.LoadU32MPRV(uintptr(ctx.Mepc))
	if emulate.Emulate(ctx, ins, l.clint) {
		return
	}
	if csr.ReadMedeleg()&csr.MedelegIllegalInstr != 0 {
		l.transferTrap(ctx, csr.CauseIllegalInstr, false, uint64(ins))
		return
	}
	l.fatal("illegal instruction at machine level")
}

// handleMachineTimer redirects the machine timer directly to S-mode
// without a full trap transfer: set mip.STIP so the delegated supervisor
// timer interrupt becomes pending, and mask mie.MTIE so this hart does
// not immediately re-trap at M-level on the same condition (spec.md §4.3
// MachineTimer bullet — the one trap kind that skips §4.7 entirely).
func (l *Loop) handleMachineTimer(ctx *trapctx.Context) {
	csr.SetMip(csr.MipSTIP)
	csr.ClearMie(csr.MieMTIE)
}

// handleMachineSoft inspects this hart's own mailbox before deciding what
// a machine software interrupt means (spec.md §4.3 MachineSoft bullet):
// a Start command observed while already running is an invariant
// violation (a peer tried to hart_start a hart that was never STOPPED) and
// is fatal; a Start observed while the hart is in any other state resumes
// it at the posted address; no command at all means the interrupt is a
// plain IPI, cleared and
// delegated to S-mode as a supervisor-software interrupt when mideleg
// allows it.
//
// hart_stop does not surface here: it resolves synchronously inside
// hartStop's own call stack (internal/sbi's hsm_ext.go), blocking in
// hsm.Monitor.Park before the ecall that invoked it ever returns, so this
// hart's coroutine never yields again until a peer's hart_start wakes it.
func (l *Loop) handleMachineSoft(ctx *trapctx.Context) {
	cmd, has := l.hsm.TakeCommand(l.hartID)
	if !has {
		l.clint.ClearSoftwarePending(l.hartID)
		if csr.ReadMideleg()&csr.MidelegSSIP != 0 {
			l.transferTrap(ctx, csr.CauseSupervisorSoft, true, 0)
			return
		}
		l.fatal("machine soft interrupt with no hart state monitor command")
		return
	}
	if cmd.Kind != hsm.CommandStart {
		l.fatal("machine soft interrupt carried an unexpected mailbox command")
		return
	}
	if s, _ := l.hsm.State(l.hartID); s == hsm.StateStarted {
		l.fatal("start command observed on a running hart")
		return
	}
	l.hsm.Resumed(l.hartID)
	l.rewriteForResume(ctx, cmd)
}

// rewriteForResume applies the register contract spec.md §4.4 specifies
// for a non-retentive resume, whichever path produced it: satp=0,
// sstatus.SIE=0, a0=hart id, a1=opaque, mepc=resume address. ctx.Mstatus
// is reloaded from the live mstatus CSR rather than patched in place,
// since csr.ClearSstatusSIE below just mutated that CSR directly and the
// old saved context is being discarded anyway.
func (l *Loop) rewriteForResume(ctx *trapctx.Context, cmd hsm.Command) {
	csr.WriteSatp(0)
	csr.ClearSstatusSIE()
	ctx.Mstatus = csr.ReadMstatus()
	ctx.SetA0(l.hartID)
	ctx.SetA1(cmd.Opaque)
	ctx.Mepc = cmd.StartAddr
}

// transferTrap implements the trap-transfer-to-S-mode procedure of
// spec.md §4.7: write scause/sepc/stval, move sstatus.SIE into SPIE and
// clear SIE, set SPP from the privilege mode the trap interrupted, then
// redirect mepc to stvec's base (direct mode, or any exception) or
// stvec's base plus 4*cause (vectored mode, interrupts only). The mstatus
// edit lands on ctx.Mstatus, not the live CSR: that field is what the
// trap vector captured at entry and what resumeTrampoline pushes back
// into hardware (with MPP forced to S) on the next Resume, so it is the
// only copy of "the S-mode view of mstatus" that matters between now and
// then.
func (l *Loop) transferTrap(ctx *trapctx.Context, cause uint64, isInterrupt bool, stval uint64) {
	scause := cause
	if isInterrupt {
		scause |= csr.InterruptBit
	}
	csr.WriteScause(scause)
	csr.WriteSepc(ctx.Mepc)
	csr.WriteStval(stval)

	mstatus := ctx.Mstatus
	if mstatus&csr.MstatusSIE != 0 {
		mstatus |= csr.MstatusSPIE
	} else {
		mstatus &^= csr.MstatusSPIE
	}
	mstatus &^= csr.MstatusSIE
	if mstatus&csr.MstatusMPP != csr.MppU {
		mstatus |= csr.MstatusSPP
	} else {
		mstatus &^= csr.MstatusSPP
	}
	ctx.Mstatus = mstatus

	stvecRaw := csr.ReadStvec()
	base := stvecRaw &^ 0x3
	vectored := stvecRaw&0x3 == 1
	if isInterrupt && vectored {
		ctx.Mepc = base + 4*cause
	} else {
		ctx.Mepc = base
	}
}

// fatal prints a one-line diagnostic and halts this hart forever. Per
// spec.md §7, a fatal condition never attempts SRST or any other
// recovery — it just stops making progress, loudly, on whichever console
// is wired up.
func (l *Loop) fatal(msg string) {
	if l.log != nil {
		l.log.Print("panic: hart ")
		l.log.Hex64(l.hartID)
		l.log.Println(": " + msg)
	}
	for {
		csr.Wfi()
	}
}
