package sbi

import (
	"testing"

	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/clint"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/hsm"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/uart"
)

// rebind resets the package-level Bind guard so each test can install its
// own Providers; production code only ever calls Bind once (spec.md §3),
// but the test binary calls it once per test function.
func rebind(t *testing.T, p Providers) {
	t.Helper()
	bound = false
	Bind(p)
}

func testProviders(self uint64) (Providers, *clint.Fake, *uart.FakeConsole, *hsm.Monitor) {
	dev := clint.NewFake(0)
	console := uart.NewFakeConsole(nil)
	mon := hsm.New(2, 0, dev)
	p := Providers{
		Console:  console,
		Clint:    dev,
		HSM:      mon,
		SelfHart: func() uint64 { return self },
		ImplID:   0x1357,
		ImplVer:  1,
		Halt:     func(string) {},
	}
	return p, dev, console, mon
}

func TestProbeCoversStandardAndLegacyExtensions(t *testing.T) {
	p, _, _, _ := testProviders(0)
	rebind(t, p)

	for _, id := range []uint64{ExtBase, ExtTime, ExtIPI, ExtHSM, ExtSRST, 0x00, 0x01, 0x08} {
		if !Probe(id) {
			t.Errorf("Probe(%#x) = false, want true", id)
		}
	}
	if Probe(0x09) {
		t.Errorf("Probe(0x09) = true, want false (past legacy range)")
	}
	if Probe(0x1234_5678) {
		t.Errorf("Probe(unknown) = true, want false")
	}
}

func TestBaseGetSpecVersion(t *testing.T) {
	p, _, _, _ := testProviders(0)
	rebind(t, p)

	r := Ecall(ExtBase, fnGetSpecVersion, [6]uint64{})
	if r.Error != sbierr.Success || r.Value != specVersion {
		t.Fatalf("get_spec_version = %+v, want value %#x", r, specVersion)
	}
}

func TestBaseProbeExtensionFunction(t *testing.T) {
	p, _, _, _ := testProviders(0)
	rebind(t, p)

	r := Ecall(ExtBase, fnProbeExtension, [6]uint64{ExtHSM})
	if r.Value != 1 {
		t.Errorf("probe_extension(HSM) = %d, want 1", r.Value)
	}
	r = Ecall(ExtBase, fnProbeExtension, [6]uint64{0xDEAD})
	if r.Value != 0 {
		t.Errorf("probe_extension(unknown) = %d, want 0", r.Value)
	}
}

func TestTimeSetTimerProgramsClint(t *testing.T) {
	p, dev, _, _ := testProviders(1)
	rebind(t, p)

	r := Ecall(ExtTime, fnSetTimer, [6]uint64{500})
	if r.Error != sbierr.Success {
		t.Fatalf("set_timer error = %d", r.Error)
	}
	cmp, ok := dev.TimerCompare(1)
	if !ok || cmp != 500 {
		t.Errorf("TimerCompare(1) = (%d, %v), want (500, true)", cmp, ok)
	}
}

func TestLegacyConsolePutcharAndGetchar(t *testing.T) {
	p, _, console, _ := testProviders(0)
	console.Input = []byte{'z'}
	rebind(t, p)

	Ecall(legacyConsolePutchar, 0, [6]uint64{'A'})
	if string(console.Out) != "A" {
		t.Errorf("console output = %q, want %q", console.Out, "A")
	}

	r := Ecall(legacyConsoleGetchar, 0, [6]uint64{})
	if r.Value != 'z' {
		t.Errorf("console_getchar = %#x, want 'z'", r.Value)
	}
}

func TestLegacySetTimerSharesTimeEcallPath(t *testing.T) {
	p, dev, _, _ := testProviders(0)
	rebind(t, p)

	Ecall(legacySetTimer, 0, [6]uint64{42})
	if cmp, _ := dev.TimerCompare(0); cmp != 42 {
		t.Errorf("legacy set_timer did not program mtimecmp, got %d", cmp)
	}
}

func TestIPISetsSoftwarePendingOnMaskedHarts(t *testing.T) {
	p, dev, _, _ := testProviders(0)
	rebind(t, p)

	Ecall(ExtIPI, fnSendIPI, [6]uint64{0b11, 0})
	if !dev.SoftwarePending(0) || !dev.SoftwarePending(1) {
		t.Fatalf("send_ipi(0b11, 0) should pend harts 0 and 1")
	}
}

func TestHSMStartStopStatusRoundTrip(t *testing.T) {
	p, _, _, _ := testProviders(0)
	rebind(t, p)

	r := Ecall(ExtHSM, fnHartStart, [6]uint64{1, 0x8000_0000, 0xCAFE})
	if r.Error != sbierr.Success {
		t.Fatalf("hart_start = %d", r.Error)
	}
	status := Ecall(ExtHSM, fnHartGetStatus, [6]uint64{1})
	if hsm.State(status.Value) != hsm.StateStartPending {
		t.Errorf("hart 1 status = %v, want START_PENDING", hsm.State(status.Value))
	}

	r = Ecall(ExtHSM, fnHartStart, [6]uint64{99, 0, 0})
	if r.Error != sbierr.InvalidParam {
		t.Errorf("hart_start(99) error = %d, want InvalidParam", r.Error)
	}
}

func TestHSMNonRetentiveSuspendReturnsSentinel(t *testing.T) {
	p, _, _, _ := testProviders(1)
	rebind(t, p)
	p.HSM.Resumed(1) // hart 1 is the caller, so it must be STARTED

	r := Ecall(ExtHSM, fnHartSuspend, [6]uint64{0x8000_0000, 0x8020_1000, 0xABCD})
	if r.Error != sbierr.NonRetentive {
		t.Fatalf("hart_suspend(non-retentive) error = %d, want NonRetentive sentinel", r.Error)
	}
	cmd, ok := p.HSM.TakeCommand(1)
	if !ok || cmd.Kind != hsm.CommandStart || cmd.StartAddr != 0x8020_1000 || cmd.Opaque != 0xABCD {
		t.Errorf("pending command after non-retentive suspend = %+v, ok=%v", cmd, ok)
	}
}

func TestSRSTHalts(t *testing.T) {
	halted := ""
	dev := clint.NewFake(0)
	p := Providers{
		Console:  uart.NewFakeConsole(nil),
		Clint:    dev,
		HSM:      hsm.New(1, 0, dev),
		SelfHart: func() uint64 { return 0 },
		Halt:     func(reason string) { halted = reason },
	}
	rebind(t, p)

	Ecall(ExtSRST, fnSystemReset, [6]uint64{resetTypeShutdown, 0})
	if halted == "" {
		t.Fatalf("srstEcall did not call Halt")
	}
}

func TestEcallUnknownExtensionIsNotSupported(t *testing.T) {
	p, _, _, _ := testProviders(0)
	rebind(t, p)

	r := Ecall(0x1234_5678, 0, [6]uint64{})
	if r.Error != sbierr.NotSupported {
		t.Errorf("unknown extension error = %d, want NotSupported", r.Error)
	}
}
