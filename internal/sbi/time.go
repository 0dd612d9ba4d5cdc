package sbi

import "github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"

// TIME extension function ID (spec.md §4.5).
const fnSetTimer = 0

// timeEcall implements set_timer(stime_value): program this hart's CLINT
// mtimecmp so the next machine timer interrupt fires at stime_value
// (spec.md §4.3 MachineTimer handling re-arms through this same path).
func timeEcall(function uint64, args [6]uint64) Result {
	if function != fnSetTimer {
		return errOf(sbierr.NotSupported)
	}
	providers.Clint.SetTimerCompare(providers.SelfHart(), args[0])
	return ok(0)
}
