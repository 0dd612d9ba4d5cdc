package sbi

// legacyEcall implements the SBI v0.1 legacy extensions spec.md §4.5/§6
// names: console_putchar, console_getchar, set_timer, send_ipi, shutdown,
// plus clear_ipi, which clears the caller's CLINT soft-pending bit. The
// remote-fence family (0x05-0x07) still probes as supported — spec.md
// §8's round-trip covers the whole 0x00..0x08 range — but has no behavior
// to implement against a single-hart-pair platform with no remote TLB
// shootout, so those calls return success as a no-op.
//
// Legacy calls return their result as a raw value in a0, not an
// (error, value) pair (SPEC_FULL.md §13); Result.Value carries that raw
// value and Result.Error is always sbierr.Success. internal/execute
// writes Result.Value to a0 (and 0 to a1) for these extension IDs.
func legacyEcall(extensionID uint64, args [6]uint64) Result {
	switch extensionID {
	case legacySetTimer:
		providers.Clint.SetTimerCompare(providers.SelfHart(), args[0])
		return ok(0)
	case legacyConsolePutchar:
		providers.Console.PutChar(byte(args[0]))
		return ok(0)
	case legacyConsoleGetchar:
		c, okRead := providers.Console.GetChar()
		if !okRead {
			return ok(^uint64(0)) // -1 in a0
		}
		return ok(uint64(c))
	case legacyClearIPI:
		providers.Clint.ClearSoftwarePending(providers.SelfHart())
		return ok(0)
	case legacySendIPI:
		sendIPIMask(args[0], args[1])
		return ok(0)
	case legacyRemoteFenceI, legacyRemoteSFenceVMA, legacyRemoteSFenceASID:
		return ok(0)
	case legacyShutdown:
		providers.Halt("legacy shutdown")
		return ok(0) // unreachable: Halt never returns
	default:
		return ok(0)
	}
}
