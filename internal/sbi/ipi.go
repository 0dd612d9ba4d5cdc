package sbi

import "github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"

// IPI extension function ID (spec.md §4.5).
const fnSendIPI = 0

// sendIPIMask raises the machine-software-interrupt pending bit on every
// hart selected by hartMask, relative to hartMaskBase (standard SBI hart
// mask convention: bit i of hartMask selects hart hartMaskBase+i). Shared
// by the modern IPI extension and the legacy send_ipi call (spec.md §4.5,
// §6).
func sendIPIMask(hartMask, hartMaskBase uint64) {
	for i := 0; i < 64; i++ {
		if hartMask&(1<<uint(i)) == 0 {
			continue
		}
		providers.Clint.SetSoftwarePending(hartMaskBase + uint64(i))
	}
}

// ipiEcall implements send_ipi(hart_mask, hart_mask_base) (spec.md §4.5).
func ipiEcall(function uint64, args [6]uint64) Result {
	if function != fnSendIPI {
		return errOf(sbierr.NotSupported)
	}
	sendIPIMask(args[0], args[1])
	return ok(0)
}
