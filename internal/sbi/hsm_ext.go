package sbi

import (
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/hsm"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"
)

// HSM extension function IDs (standard SBI HSM extension, spec.md §4.5).
const (
	fnHartStart     = 0
	fnHartStop      = 1
	fnHartGetStatus = 2
	fnHartSuspend   = 3
)

// hsmEcall implements hart_start/hart_stop/hart_get_status/hart_suspend
// (spec.md §4.4) by delegating to the shared hsm.Monitor.
func hsmEcall(function uint64, args [6]uint64) Result {
	switch function {
	case fnHartStart:
		return errOf(providers.HSM.Start(args[0], args[1], args[2]))
	case fnHartStop:
		return hartStop()
	case fnHartGetStatus:
		state, exists := providers.HSM.State(args[0])
		if !exists {
			return errOf(sbierr.InvalidParam)
		}
		return ok(uint64(state))
	case fnHartSuspend:
		return hartSuspend(args)
	default:
		return errOf(sbierr.NotSupported)
	}
}

// hartStop implements hart_stop: per spec.md §4.4 it never returns
// SBI_SUCCESS to the caller. It posts and immediately drains its own Stop
// marker (recording the state transition), blocks in Park until a peer's
// hart_start posts a fresh Start, and hands back the 0x233 sentinel so
// internal/execute performs the same non-retentive register rewrite used
// to resume from a non-retentive suspend.
func hartStop() Result {
	self := providers.SelfHart()
	if code := providers.HSM.Stop(self); code != sbierr.Success {
		return errOf(code)
	}
	providers.HSM.TakeCommand(self)
	providers.HSM.Park(self)
	return errOf(sbierr.NonRetentive)
}

// hartSuspend splits retentive from non-retentive kinds (spec.md §4.4): a
// retentive suspend blocks in pause() here and returns SBI_SUCCESS with no
// context change; a non-retentive suspend posts its own resume Start and
// returns the 0x233 sentinel for internal/execute to act on.
func hartSuspend(args [6]uint64) Result {
	self := providers.SelfHart()
	cmd := hsm.Command{SuspendKind: uint32(args[0])}
	if cmd.NonRetentive() {
		return errOf(providers.HSM.SuspendNonRetentive(self, args[1], args[2]))
	}
	if code := providers.HSM.Suspend(self); code != sbierr.Success {
		return errOf(code)
	}
	providers.HSM.Pause(self)
	providers.HSM.Resumed(self)
	return ok(0)
}
