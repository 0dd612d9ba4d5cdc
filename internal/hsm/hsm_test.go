package hsm

import (
	"testing"

	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/clint"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"
)

func TestNewBootHartStarted(t *testing.T) {
	m := New(2, 0, clint.NewFake(0))
	if s, _ := m.State(0); s != StateStarted {
		t.Errorf("boot hart state = %v, want STARTED", s)
	}
	if s, _ := m.State(1); s != StateStopped {
		t.Errorf("secondary hart state = %v, want STOPPED", s)
	}
}

func TestStartStoppedHartPostsCommandAndRaisesIPI(t *testing.T) {
	dev := clint.NewFake(0)
	m := New(2, 0, dev)

	if got := m.Start(1, 0x8020_0000, 0x1234); got != sbierr.Success {
		t.Fatalf("Start() = %d, want success", got)
	}
	if s, _ := m.State(1); s != StateStartPending {
		t.Errorf("state after Start = %v, want START_PENDING", s)
	}
	if !dev.SoftwarePending(1) {
		t.Errorf("Start() did not raise hart 1's CLINT IPI")
	}
	cmd, ok := m.TakeCommand(1)
	if !ok || cmd.Kind != CommandStart || cmd.StartAddr != 0x8020_0000 || cmd.Opaque != 0x1234 {
		t.Errorf("TakeCommand(1) = %+v, %v, want Start{0x80200000, 0x1234}", cmd, ok)
	}
}

func TestStartAlreadyStartedReturnsAlreadyAvailable(t *testing.T) {
	m := New(2, 0, clint.NewFake(0))
	if got := m.Start(0, 0, 0); got != sbierr.AlreadyAvailable {
		t.Errorf("Start(already-started hart) = %d, want AlreadyAvailable", got)
	}
}

func TestStartInvalidHartID(t *testing.T) {
	m := New(2, 0, clint.NewFake(0))
	if got := m.Start(5, 0, 0); got != sbierr.InvalidParam {
		t.Errorf("Start(out-of-range hart) = %d, want InvalidParam", got)
	}
}

func TestStopThenResumeCycle(t *testing.T) {
	m := New(2, 0, clint.NewFake(0))
	if got := m.Stop(0); got != sbierr.Success {
		t.Fatalf("Stop() = %d, want success", got)
	}
	if s, _ := m.State(0); s != StateStopPending {
		t.Errorf("state after Stop = %v, want STOP_PENDING", s)
	}
	cmd, ok := m.TakeCommand(0)
	if !ok || cmd.Kind != CommandStop {
		t.Fatalf("TakeCommand(0) = %+v, %v, want Stop", cmd, ok)
	}
	m.Resumed(0)
	if s, _ := m.State(0); s != StateStarted {
		t.Errorf("state after Resumed = %v, want STARTED", s)
	}
}

func TestMailboxRejectsSecondPostUntilDrained(t *testing.T) {
	m := New(2, 0, clint.NewFake(0))
	m.Start(1, 0x1000, 0)
	if got := m.Start(1, 0x2000, 0); got != sbierr.AlreadyAvailable {
		t.Errorf("second Start() before drain = %d, want AlreadyAvailable (hart is START_PENDING)", got)
	}
	if m.harts[1].mbox.post(Command{Kind: CommandStart, StartAddr: 0x2000}) {
		t.Errorf("mailbox accepted a second post before the first was drained")
	}
	cmd, _ := m.TakeCommand(1)
	if cmd.StartAddr != 0x1000 {
		t.Errorf("surviving command StartAddr = %#x, want the first post's 0x1000", cmd.StartAddr)
	}
}

func TestCommandNonRetentive(t *testing.T) {
	retentive := Command{Kind: CommandSuspend, SuspendKind: 0}
	nonRetentive := Command{Kind: CommandSuspend, SuspendKind: 0x8000_0000}
	if retentive.NonRetentive() {
		t.Errorf("SuspendKind=0 should be retentive")
	}
	if !nonRetentive.NonRetentive() {
		t.Errorf("SuspendKind=0x80000000 should be non-retentive")
	}
}
