package sbi

import "github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"

// SRST extension function ID (spec.md §4.5).
const fnSystemReset = 0

// Reset type/reason values. resetReason names the three reset types in its
// log line and reports any other type as "unknown type"; the reset reason
// is accepted but not included in the message.
const (
	resetTypeShutdown   = 0
	resetTypeColdReboot = 1
	resetTypeWarmReboot = 2

	resetReasonNone          = 0
	resetReasonSystemFailure = 1
)

// srstEcall implements system_reset(type, reason): this platform has no
// power-control hardware to actually cut power or restart the SoC, so a
// reset is implemented as providers.Halt after logging, same as the legacy
// shutdown call (spec.md §4.5 "implemented as an infinite loop after
// logging").
func srstEcall(function uint64, args [6]uint64) Result {
	if function != fnSystemReset {
		return errOf(sbierr.NotSupported)
	}
	providers.Halt(resetReason(args[0], args[1]))
	return ok(0) // unreachable: Halt never returns
}

func resetReason(resetType, reason uint64) string {
	switch resetType {
	case resetTypeShutdown:
		return "system_reset: shutdown"
	case resetTypeColdReboot:
		return "system_reset: cold reboot"
	case resetTypeWarmReboot:
		return "system_reset: warm reboot"
	default:
		return "system_reset: unknown type"
	}
}
