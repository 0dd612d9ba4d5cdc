// Package delegate applies the medeleg/mideleg/mie bit sets spec.md §4.6's
// boot sequence programs before the first hart resumes into S-mode.
// Grounded on the original firmware's delegate_interrupt_exception, turned
// into an explicit bit table the way internal/pmp turns set_pmp's hardcoded
// csrw calls into a Region table — in both cases so the policy is a value
// delegate_test.go can assert on without touching a CSR.
//
// Ecall-from-S-mode (medeleg bit 9) is deliberately never delegated: that
// exception is the SBI call path itself (spec.md §6), and it must keep
// trapping to M-mode for internal/execute to dispatch it.
package delegate

import "github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"

// Medeleg is the OR of every exception delegated to S-mode.
const Medeleg = csr.MedelegInstrMisaligned |
	csr.MedelegBreakpoint |
	csr.MedelegUserEcall |
	csr.MedelegInstrPageFault |
	csr.MedelegLoadPageFault |
	csr.MedelegStorePageFault |
	csr.MedelegInstrAccessFault |
	csr.MedelegLoadAccessFault |
	csr.MedelegStoreAccessFault

// Mideleg is the OR of every interrupt delegated to S-mode.
const Mideleg = csr.MidelegSEIP |
	csr.MidelegSTIP |
	csr.MidelegSSIP |
	csr.MidelegUEIP |
	csr.MidelegUTIP |
	csr.MidelegUSIP

// Mie is the set of machine interrupts this firmware enables at boot:
// external and software, but not the machine timer. internal/execute sets
// mie.MTIE when S-mode arms a timer through set_timer, and clears it again
// when it forwards the fired timer to S-mode as mip.STIP (spec.md §4.3).
const Mie = csr.MieMEIE | csr.MieMSIE

// Apply programs medeleg, mideleg and mie from the constants above. Must
// run once per hart, after PMP is configured and before the first resume
// into S-mode (spec.md §4.5 boot sequence).
func Apply() {
	csr.SetMedeleg(Medeleg)
	csr.SetMideleg(Mideleg)
	csr.SetMie(Mie)
}
