package clint

import "testing"

func TestLayoutAddressing(t *testing.T) {
	l := DefaultLayout
	if got, want := l.msipAddr(0), l.Base; got != want {
		t.Errorf("msipAddr(0) = %#x, want %#x", got, want)
	}
	if got, want := l.msipAddr(1), l.Base+4; got != want {
		t.Errorf("msipAddr(1) = %#x, want %#x", got, want)
	}
	if got, want := l.mtimecmpAddr(0), l.Base+0x4000; got != want {
		t.Errorf("mtimecmpAddr(0) = %#x, want %#x", got, want)
	}
	if got, want := l.mtimecmpAddr(1), l.Base+0x4000+8; got != want {
		t.Errorf("mtimecmpAddr(1) = %#x, want %#x", got, want)
	}
	if got, want := l.mtimeAddr(), l.Base+0xBFF8; got != want {
		t.Errorf("mtimeAddr() = %#x, want %#x", got, want)
	}
}

func TestFakeSoftwarePending(t *testing.T) {
	f := NewFake(0)
	if f.SoftwarePending(0) {
		t.Fatalf("hart 0 should start with no pending IPI")
	}
	f.SetSoftwarePending(0)
	if !f.SoftwarePending(0) {
		t.Fatalf("SetSoftwarePending(0) did not take effect")
	}
	if f.SoftwarePending(1) {
		t.Fatalf("SetSoftwarePending(0) leaked into hart 1")
	}
	f.ClearSoftwarePending(0)
	if f.SoftwarePending(0) {
		t.Fatalf("ClearSoftwarePending(0) did not take effect")
	}
}

func TestFakeTimerCompareAndTime(t *testing.T) {
	f := NewFake(100)
	if got := f.Time(); got != 100 {
		t.Fatalf("Time() = %d, want 100", got)
	}
	if _, ok := f.TimerCompare(0); ok {
		t.Fatalf("TimerCompare should report ok=false before any SetTimerCompare")
	}
	f.SetTimerCompare(0, 500)
	cmp, ok := f.TimerCompare(0)
	if !ok || cmp != 500 {
		t.Fatalf("TimerCompare(0) = (%d, %v), want (500, true)", cmp, ok)
	}
	f.Advance(50)
	if got := f.Time(); got != 150 {
		t.Fatalf("Time() after Advance(50) = %d, want 150", got)
	}
}
