// Package trapctx defines the data the trap vector and the execute loop
// share: the saved S-mode register file and the classified trap tag
// (spec.md §3 SupervisorContext, MachineTrap).
package trapctx

// Context is the fixed-size record of S-mode register state preserved
// across a trap, one per hart. It is embedded in the hart's coro.Runtime; the
// trap vector (internal/coro) is the only writer on entry, the execute
// loop (internal/execute) is the only writer between a yield and the next
// resume, per spec.md §4.1/§4.2's single-authoritative-copy invariant.
//
// The GPR layout mirrors the RV64 integer register file minus x0 (hard
// wired zero), so index 0 of Regs is x1 (ra). Named accessors below cover
// the registers the SBI ABI and trap-transfer logic actually touch; the
// rest are carried only to be restored byte-for-byte on resume.
type Context struct {
	Regs    [31]uint64 // x1 (ra) .. x31 (t6)
	Mstatus uint64
	Mepc    uint64
}

// Register indices into Regs, x1-based.
const (
	regRA = iota
	regSP
	regGP
	regTP
	regT0
	regT1
	regT2
	regS0
	regS1
	regA0
	regA1
	regA2
	regA3
	regA4
	regA5
	regA6
	regA7
)

// A0-A7 expose the argument/return registers the SBI calling convention
// uses (spec.md §6): a7=extension, a6=function, a0-a5=args, (a0,a1)=(error,value).
func (c *Context) A0() uint64      { return c.Regs[regA0] }
func (c *Context) A1() uint64      { return c.Regs[regA1] }
func (c *Context) A2() uint64      { return c.Regs[regA2] }
func (c *Context) A3() uint64      { return c.Regs[regA3] }
func (c *Context) A4() uint64      { return c.Regs[regA4] }
func (c *Context) A5() uint64      { return c.Regs[regA5] }
func (c *Context) A6() uint64      { return c.Regs[regA6] }
func (c *Context) A7() uint64      { return c.Regs[regA7] }
func (c *Context) SetA0(v uint64)  { c.Regs[regA0] = v }
func (c *Context) SetA1(v uint64)  { c.Regs[regA1] = v }

// Args returns the six SBI argument registers a0..a5 as a fixed array, the
// shape internal/sbi's dispatcher expects.
func (c *Context) Args() [6]uint64 {
	return [6]uint64{c.Regs[regA0], c.Regs[regA1], c.Regs[regA2], c.Regs[regA3], c.Regs[regA4], c.Regs[regA5]}
}

// TrapKind tags a yielded machine trap (spec.md §3 MachineTrap). It is
// derived from mcause at trap entry and never stored beyond one execute
// loop iteration.
type TrapKind int

const (
	SbiCall TrapKind = iota
	IllegalInstruction
	MachineTimer
	MachineSoft
)

func (k TrapKind) String() string {
	switch k {
	case SbiCall:
		return "SbiCall"
	case IllegalInstruction:
		return "IllegalInstruction"
	case MachineTimer:
		return "MachineTimer"
	case MachineSoft:
		return "MachineSoft"
	default:
		return "Unknown"
	}
}

// ClassifyMcause maps a raw mcause value (interrupt bit included, per
// internal/csr.InterruptBit) to a TrapKind, or ok=false if the cause is
// not one this firmware's trap vector is expected to see.
func ClassifyMcause(mcause uint64, interruptBit uint64, ecallFromS, illegalInstr, machineTimer, machineSoft uint64) (TrapKind, bool) {
	isInterrupt := mcause&interruptBit != 0
	code := mcause &^ interruptBit
	switch {
	case !isInterrupt && code == ecallFromS:
		return SbiCall, true
	case !isInterrupt && code == illegalInstr:
		return IllegalInstruction, true
	case isInterrupt && code == machineTimer:
		return MachineTimer, true
	case isInterrupt && code == machineSoft:
		return MachineSoft, true
	default:
		return 0, false
	}
}
