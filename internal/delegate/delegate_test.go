package delegate

import (
	"testing"

	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"
)

func TestMedelegNeverDelegatesSModeEcall(t *testing.T) {
	if Medeleg&csr.MedelegUserEcall == 0 {
		t.Errorf("Medeleg must delegate user ecall")
	}
	// Bit 9 (ecall from S-mode) is not a named medeleg constant here
	// because it must never be set: it is the SBI call path itself.
	const medelegSEcall = 1 << 9
	if Medeleg&medelegSEcall != 0 {
		t.Errorf("Medeleg must not delegate ecall from S-mode, got %#x", Medeleg)
	}
}

func TestMidelegCoversSAndUModeInterrupts(t *testing.T) {
	want := csr.MidelegSEIP | csr.MidelegSTIP | csr.MidelegSSIP |
		csr.MidelegUEIP | csr.MidelegUTIP | csr.MidelegUSIP
	if Mideleg != want {
		t.Errorf("Mideleg = %#x, want %#x", Mideleg, want)
	}
}

func TestMieExcludesMachineTimer(t *testing.T) {
	if Mie&csr.MieMTIE != 0 {
		t.Errorf("Mie must not enable the machine timer interrupt at M-level, got %#x", Mie)
	}
	if Mie&csr.MieMEIE == 0 || Mie&csr.MieMSIE == 0 {
		t.Errorf("Mie must enable external and software interrupts, got %#x", Mie)
	}
}
