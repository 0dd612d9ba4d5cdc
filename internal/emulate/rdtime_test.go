package emulate

import (
	"testing"

	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/trapctx"
)

// encodeCSRRS builds the raw word for `csrrs rd, csr, rs1`.
func encodeCSRRS(csr, rs1, rd uint32) uint32 {
	return (csr << 20) | (rs1 << 15) | (funct3CSRRS << 12) | (rd << 7) | opcodeSystem
}

type fakeTime uint64

func (f fakeTime) Time() uint64 { return uint64(f) }

func TestRdtimeRecognizesShape(t *testing.T) {
	ins := encodeCSRRS(csrTime, 0, 11)
	rd, ok := Rdtime(ins)
	if !ok || rd != 11 {
		t.Fatalf("Rdtime() = (%d, %v), want (11, true)", rd, ok)
	}
}

func TestRdtimeRejectsNonZeroRS1(t *testing.T) {
	ins := encodeCSRRS(csrTime, 5, 11)
	if _, ok := Rdtime(ins); ok {
		t.Fatalf("Rdtime() should reject rs1 != x0")
	}
}

func TestRdtimehRecognizesShape(t *testing.T) {
	ins := encodeCSRRS(csrTimeh, 0, 7)
	rd, ok := Rdtimeh(ins)
	if !ok || rd != 7 {
		t.Fatalf("Rdtimeh() = (%d, %v), want (7, true)", rd, ok)
	}
}

func TestRdtimeRejectsUnrelatedCSR(t *testing.T) {
	ins := encodeCSRRS(0xC00 /* cycle */, 0, 11)
	if _, ok := Rdtime(ins); ok {
		t.Fatalf("Rdtime() should not match the cycle CSR")
	}
	if _, ok := Rdtimeh(ins); ok {
		t.Fatalf("Rdtimeh() should not match the cycle CSR")
	}
}

func TestEmulateWritesDestAndAdvancesMepc(t *testing.T) {
	var ctx trapctx.Context
	ctx.Mepc = 0x8020_1000
	ins := encodeCSRRS(csrTime, 0, 10) // rd = x10 = a0

	if !Emulate(&ctx, ins, fakeTime(0x1122_3344_5566_7788)) {
		t.Fatalf("Emulate() = false, want true for rdtime")
	}
	if ctx.A0() != 0x1122_3344_5566_7788 {
		t.Errorf("a0 = %#x, want mtime value", ctx.A0())
	}
	if ctx.Mepc != 0x8020_1004 {
		t.Errorf("mepc = %#x, want +4", ctx.Mepc)
	}
}

func TestEmulateRdtimehTakesUpperHalf(t *testing.T) {
	var ctx trapctx.Context
	ins := encodeCSRRS(csrTimeh, 0, 10)
	Emulate(&ctx, ins, fakeTime(0x1122_3344_5566_7788))
	if ctx.A0() != 0x1122_3344 {
		t.Errorf("a0 = %#x, want upper 32 bits of mtime", ctx.A0())
	}
}

func TestEmulateIgnoresX0Destination(t *testing.T) {
	var ctx trapctx.Context
	ins := encodeCSRRS(csrTime, 0, 0)
	if !Emulate(&ctx, ins, fakeTime(42)) {
		t.Fatalf("Emulate() should still recognize rdtime x0")
	}
	for i, v := range ctx.Regs {
		if v != 0 {
			t.Fatalf("Regs[%d] = %#x, want untouched (rd=x0 is a no-op)", i, v)
		}
	}
}

func TestEmulateRejectsOtherInstructions(t *testing.T) {
	var ctx trapctx.Context
	ctx.Mepc = 0x1000
	// csrw mcycle, x0 -- a CSRRW, not CSRRS, so Emulate must leave ctx alone.
	ins := (0x0B00 << 20) | (0 << 15) | (0b001 << 12) | (0 << 7) | opcodeSystem
	if Emulate(&ctx, uint32(ins), fakeTime(99)) {
		t.Fatalf("Emulate() should not recognize a CSRRW as rdtime")
	}
	if ctx.Mepc != 0x1000 {
		t.Errorf("mepc mutated on a non-emulable instruction")
	}
}
