// Package hsm implements the Hart State Monitor: per-hart lifecycle state
// (spec.md §3 HartState), the command mailbox harts post to each other
// (spec.md §3 Per-hart mailbox, §9 Mailbox representation), and pause(),
// the idle-until-woken primitive every stopped or suspended hart blocks in
// (spec.md §4.4).
//
// Grounded on the original firmware's pause() (main.rs) for the WFI
// sequence, generalized here from a single hardcoded function into a
// State+Mailbox pair so internal/execute can drive it and
// hsm_test.go can assert on it without real CSRs — the same
// split internal/pmp and internal/delegate use to turn hardcoded setup
// code into testable tables.
package hsm

import (
	"sync"
	"sync/atomic"

	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/clint"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"
)

// State is a hart's lifecycle stage (spec.md §3 HartState). The names
// match the SBI HSM extension's status values, not just spec.md's prose
// labels, since internal/sbi's hart_get_status returns these directly.
type State int32

const (
	StateStarted      State = 0
	StateStopped      State = 1
	StateStartPending State = 2
	StateStopPending  State = 3
	StateSuspended    State = 4
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateStartPending:
		return "START_PENDING"
	case StateStarted:
		return "STARTED"
	case StateStopPending:
		return "STOP_PENDING"
	case StateSuspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

// CommandKind tags the payload carried in a hart's mailbox (spec.md §3
// HsmCommand).
type CommandKind int32

const (
	CommandNone CommandKind = iota
	CommandStart
	CommandStop
	CommandSuspend
)

// Command is the tagged mailbox payload. StartAddr/Opaque are used by
// CommandStart and (for the resume address) by CommandSuspend;
// SuspendKind distinguishes retentive from non-retentive suspend
// requests — spec.md §4.4 treats kinds with the top bit set (>=
// 0x8000_0000) as non-retentive.
type Command struct {
	Kind       CommandKind
	StartAddr  uint64
	Opaque     uint64
	SuspendKind uint32
}

// NonRetentive reports whether a CommandSuspend's kind discards S-mode
// context on resume (spec.md §4.4, Glossary "Non-retentive suspend").
func (c Command) NonRetentive() bool {
	return c.SuspendKind&0x8000_0000 != 0
}

// mailbox is a single-producer/single-consumer slot holding at most one
// Command (spec.md §3, §9). A plain mutex suffices: posts are rare
// (one per HSM call) and contention is never more than two harts, but the
// design note calls for a single-slot CAS so concurrent posters see a
// clean "occupied" failure rather than silently clobbering each other.
type mailbox struct {
	mu       sync.Mutex
	occupied bool
	cmd      Command
}

// post stores cmd if the slot is empty, returning ok=false if a command is
// already pending (spec.md §9: "a post returns failure if the slot is
// occupied").
func (m *mailbox) post(cmd Command) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.occupied {
		return false
	}
	m.cmd = cmd
	m.occupied = true
	return true
}

// take removes and returns the pending command, if any.
func (m *mailbox) take() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.occupied {
		return Command{}, false
	}
	c := m.cmd
	m.occupied = false
	m.cmd = Command{}
	return c, true
}

// peek reports the pending command's kind without draining it.
func (m *mailbox) peek() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.occupied {
		return Command{}, false
	}
	return m.cmd, true
}

// Hart bundles one physical hart's HSM state and mailbox.
type Hart struct {
	id    uint64
	state atomic.Int32
	mbox  mailbox
}

// Monitor tracks every hart's State and mailbox and is the object
// internal/sbi's HSM extension and internal/execute's MachineSoft handler
// both operate on.
type Monitor struct {
	harts []*Hart
	clint clint.Device
}

// New returns a Monitor for numHarts harts, all STOPPED except bootHart,
// which starts STARTED (spec.md §4.6: "exactly one hart — the one
// reporting mhartid == 0 — performs global init"; the rest pause()).
func New(numHarts int, bootHart uint64, dev clint.Device) *Monitor {
	m := &Monitor{harts: make([]*Hart, numHarts), clint: dev}
	for i := range m.harts {
		h := &Hart{id: uint64(i)}
		if uint64(i) == bootHart {
			h.state.Store(int32(StateStarted))
		} else {
			h.state.Store(int32(StateStopped))
		}
		m.harts[i] = h
	}
	return m
}

func (m *Monitor) hart(id uint64) (*Hart, bool) {
	if id >= uint64(len(m.harts)) {
		return nil, false
	}
	return m.harts[id], true
}

// State returns hart id's current lifecycle state.
func (m *Monitor) State(id uint64) (State, bool) {
	h, ok := m.hart(id)
	if !ok {
		return 0, false
	}
	return State(h.state.Load()), true
}

// setState transitions hart id unconditionally; callers are responsible
// for the state-machine legality (spec.md §3's invariant that transitions
// are driven only by the owning hart's acknowledgement or a posted
// command, never a remote read-modify-write).
func (m *Monitor) setState(id uint64, s State) {
	h, _ := m.hart(id)
	h.state.Store(int32(s))
}

// Start implements sbi_hart_start (spec.md §4.4): posts Start to target
// and raises its IPI. Returns the SBI error code to return to the caller.
func (m *Monitor) Start(target uint64, startAddr, opaque uint64) int64 {
	h, ok := m.hart(target)
	if !ok {
		return sbierr.InvalidParam
	}
	switch State(h.state.Load()) {
	case StateStarted, StateStartPending:
		return sbierr.AlreadyAvailable
	case StateStopped:
		// fallthrough to post below
	default:
		return sbierr.InvalidParam
	}
	if !h.mbox.post(Command{Kind: CommandStart, StartAddr: startAddr, Opaque: opaque}) {
		return sbierr.Failed
	}
	m.setState(target, StateStartPending)
	m.clint.SetSoftwarePending(target)
	return sbierr.Success
}

// Stop implements sbi_hart_stop for the calling hart self: posts Stop to
// self and records STOP_PENDING. No IPI is raised: internal/sbi's hartStop
// drains the Stop command itself right away and then parks the hart via
// Park, so the execute loop never sees it.
func (m *Monitor) Stop(self uint64) int64 {
	h, ok := m.hart(self)
	if !ok {
		return sbierr.InvalidParam
	}
	if State(h.state.Load()) != StateStarted {
		return sbierr.Failed
	}
	h.mbox.post(Command{Kind: CommandStop})
	m.setState(self, StateStopPending)
	return sbierr.Success
}

// Suspend implements the retentive half of sbi_hart_suspend: records
// SUSPENDED and returns SBI_SUCCESS with no context change. Non-retentive
// suspend goes through SuspendNonRetentive instead.
func (m *Monitor) Suspend(self uint64) int64 {
	h, ok := m.hart(self)
	if !ok {
		return sbierr.InvalidParam
	}
	if State(h.state.Load()) != StateStarted {
		return sbierr.Failed
	}
	m.setState(self, StateSuspended)
	return sbierr.Success
}

// SuspendNonRetentive implements the non-retentive half of sbi_hart_suspend:
// posts a Start command to self's own mailbox carrying the resume address
// and opaque value, and returns the NonRetentive sentinel that tells
// internal/execute to rewrite the trap context for a fresh supervisor entry
// instead of writing back (error, value) (spec.md §4.3, §4.4).
func (m *Monitor) SuspendNonRetentive(self uint64, resumeAddr, opaque uint64) int64 {
	h, ok := m.hart(self)
	if !ok {
		return sbierr.InvalidParam
	}
	if State(h.state.Load()) != StateStarted {
		return sbierr.Failed
	}
	h.mbox.post(Command{Kind: CommandStart, StartAddr: resumeAddr, Opaque: opaque})
	m.setState(self, StateSuspended)
	return sbierr.NonRetentive
}

// Park transitions self to STOPPED and blocks until another hart posts a
// Start command and raises this hart's IPI (spec.md §4.4 hart_stop:
// "return does not reach the caller — the caller is parked by the execute
// loop"; spec.md §4.3 MachineSoft/Stop: "call pause(); upon wake, expect a
// Start{addr,opaque}"). The Start command is left in the mailbox on
// return — internal/execute's non-retentive-resume rewrite drains it via
// TakeCommand, the same contract SuspendNonRetentive uses, so both paths
// share one rewrite implementation.
func (m *Monitor) Park(self uint64) {
	h, ok := m.hart(self)
	if !ok {
		return
	}
	m.setState(self, StateStopped)
	for {
		m.Pause(self)
		if cmd, ok := h.mbox.peek(); ok && cmd.Kind == CommandStart {
			return
		}
	}
}

// Resumed marks self STARTED again after a Suspend/Stop parks it and it is
// woken (spec.md §4.3's Stop handling: "upon wake, expect a Start{...}").
func (m *Monitor) Resumed(self uint64) {
	m.setState(self, StateStarted)
}

// TakeCommand removes and returns self's pending mailbox command, if any.
func (m *Monitor) TakeCommand(self uint64) (Command, bool) {
	h, ok := m.hart(self)
	if !ok {
		return Command{}, false
	}
	return h.mbox.take()
}

// Pause is the canonical idle-until-woken primitive (spec.md §4.4,
// numbered steps 1-6). It only needs a CLINT handle, not the rest of the
// Monitor's state, so it is a thin wrapper over PauseHart.
func (m *Monitor) Pause(self uint64) {
	PauseHart(m.clint, self)
}

// PauseHart is the free-standing form of Pause, grounded directly on the
// original firmware's pause(): clear this hart's CLINT soft-pending,
// clear mip.MSIP, force mie.MSIE on for the duration, wfi-loop until
// mip.MSIP is observed, then restore mie.MSIE and clear soft-pending
// again. internal/boot calls this directly for the pre-init wait on a
// non-boot hart, before a Monitor exists to call Pause on.
//
// wfi is permitted to be a no-op (spec.md §4.4), so the loop condition,
// not the instruction, is what guarantees progress.
func PauseHart(dev clint.Device, self uint64) {
	dev.ClearSoftwarePending(self)
	csr.ClearMip(csr.MipMSIP)

	prevMSIE := csr.ReadMie()&csr.MieMSIE != 0
	csr.SetMie(csr.MieMSIE)

	for csr.ReadMip()&csr.MipMSIP == 0 {
		csr.Wfi()
	}

	if !prevMSIE {
		csr.ClearMie(csr.MieMSIE)
	}
	dev.ClearSoftwarePending(self)
}
