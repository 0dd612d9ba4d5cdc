package uart

import "testing"

func TestFakeConsoleRoundTrip(t *testing.T) {
	f := NewFakeConsole([]byte("ab"))
	c, ok := f.GetChar()
	if !ok || c != 'a' {
		t.Fatalf("GetChar() = (%q, %v), want ('a', true)", c, ok)
	}
	c, ok = f.GetChar()
	if !ok || c != 'b' {
		t.Fatalf("GetChar() = (%q, %v), want ('b', true)", c, ok)
	}
	if _, ok := f.GetChar(); ok {
		t.Fatalf("GetChar() on empty input should report ok=false")
	}

	f.WriteString("hi\n")
	if got, want := string(f.Out), "hi\n"; got != want {
		t.Errorf("Out = %q, want %q", got, want)
	}
}

func TestLoggerHex64(t *testing.T) {
	f := NewFakeConsole(nil)
	l := NewLogger(f)
	l.Hex64(0x0123456789abcdef)
	if got, want := string(f.Out), "0123456789abcdef"; got != want {
		t.Errorf("Hex64 output = %q, want %q", got, want)
	}
}

func TestLoggerHex32(t *testing.T) {
	f := NewFakeConsole(nil)
	l := NewLogger(f)
	l.Hex32(0xdeadbeef)
	if got, want := string(f.Out), "deadbeef"; got != want {
		t.Errorf("Hex32 output = %q, want %q", got, want)
	}
}

func TestLoggerPrintln(t *testing.T) {
	f := NewFakeConsole(nil)
	l := NewLogger(f)
	l.Println("boot ok")
	if got, want := string(f.Out), "boot ok\n"; got != want {
		t.Errorf("Println output = %q, want %q", got, want)
	}
}

func TestUARTRegisterAddressing(t *testing.T) {
	if got, want := reg(Base, regLCR), Base+0x0C; got != want {
		t.Errorf("reg(Base, regLCR) = %#x, want %#x", got, want)
	}
	if got, want := reg(Base, regLSR), Base+0x14; got != want {
		t.Errorf("reg(Base, regLSR) = %#x, want %#x", got, want)
	}
}
