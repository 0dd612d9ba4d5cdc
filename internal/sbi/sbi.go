// Package sbi implements the SBI v0.3 ecall dispatch surface (spec.md
// §4.5, §6): Base, legacy 0x00-0x08, TIME, IPI, HSM and SRST extensions.
//
// Grounded on the original firmware's use of the `rustsbi` crate's
// `ecall(extension, function, params)` entry point (execute.rs) — this
// package is the from-scratch replacement for that crate, organized per
// the design note's registry suggestion: rather than one long if/else
// chain, each extension is an entry in a table so dispatch_test.go
// can assert the probe/dispatch round trip (spec.md §8) against the table
// instead of duplicating its membership test by hand.
package sbi

import (
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/clint"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/hsm"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/uart"
)

// Standard SBI extension IDs this firmware answers (spec.md §4.5).
const (
	ExtBase = 0x10
	ExtTime = 0x5449_4D45
	ExtIPI  = 0x0073_5049
	ExtHSM  = 0x0048_534D
	ExtSRST = 0x5352_5354
)

// legacyFirst/legacyLast bound the SBI v0.1 legacy extension range: each
// ID in this range *is* the operation, there is no function selector
// (spec.md §4.5, §6).
const (
	legacyFirst = 0x00
	legacyLast  = 0x08

	legacySetTimer        = 0x00
	legacyConsolePutchar  = 0x01
	legacyConsoleGetchar  = 0x02
	legacyClearIPI        = 0x03
	legacySendIPI         = 0x04
	legacyRemoteFenceI     = 0x05
	legacyRemoteSFenceVMA  = 0x06
	legacyRemoteSFenceASID = 0x07
	legacyShutdown         = 0x08
)

// Result is the (error, value) pair every modern extension returns in
// (a0, a1) (spec.md §6). Legacy calls carry a raw value in Value instead,
// which internal/execute writes to a0 with a1 set to 0, per the v0.1
// convention SPEC_FULL.md §13 preserves.
type Result struct {
	Error int64
	Value uint64
}

func ok(v uint64) Result   { return Result{Error: sbierr.Success, Value: v} }
func errOf(e int64) Result { return Result{Error: e} }

// Providers bundles the platform bindings every extension needs: the
// console for legacy stdio, the CLINT for IPI/timer, and the HSM monitor
// for hart lifecycle. Bound exactly once by hart 0 during boot (spec.md §3
// "Global SBI binding table... bound exactly once... Read-only after
// binding").
type Providers struct {
	Console  uart.Console
	Clint    clint.Device
	HSM      *hsm.Monitor
	SelfHart func() uint64
	ImplID   uint64
	ImplVer  uint64
	// Halt logs reason and parks the calling hart forever (spec.md §4.5
	// SRST: "implemented as an infinite loop after logging"). It must
	// never return.
	Halt func(reason string)
}

var bound bool
var providers Providers

// Bind installs the global provider set. Panics on a second call, per the
// design note's "bind before first use; reject re-binding" (spec.md §9).
func Bind(p Providers) {
	if bound {
		panic("sbi: providers already bound")
	}
	providers = p
	bound = true
}

// extension is one row of the dispatch/probe registry.
type extension struct {
	id      uint64
	dispatch func(function uint64, args [6]uint64) Result
}

func registry() []extension {
	return []extension{
		{id: ExtBase, dispatch: baseEcall},
		{id: ExtTime, dispatch: timeEcall},
		{id: ExtIPI, dispatch: ipiEcall},
		{id: ExtHSM, dispatch: hsmEcall},
		{id: ExtSRST, dispatch: srstEcall},
	}
}

// isLegacy reports whether id falls in the SBI v0.1 legacy range.
func isLegacy(id uint64) bool {
	return id >= legacyFirst && id <= legacyLast
}

// Probe reports whether extension id is supported by this firmware
// (spec.md §8: "probe_extension(id) is non-zero iff id ∈ {Base, TIME,
// IPI, HSM, SRST, 0x00..0x08}").
func Probe(id uint64) bool {
	if isLegacy(id) {
		return true
	}
	for _, e := range registry() {
		if e.id == id {
			return true
		}
	}
	return false
}

// Ecall dispatches one SBI call (spec.md §4.3 SbiCall handling): extension
// = a7, function = a6, args = a0..a5.
func Ecall(extensionID, functionID uint64, args [6]uint64) Result {
	if isLegacy(extensionID) {
		return legacyEcall(extensionID, args)
	}
	for _, e := range registry() {
		if e.id == extensionID {
			return e.dispatch(functionID, args)
		}
	}
	return errOf(sbierr.NotSupported)
}
