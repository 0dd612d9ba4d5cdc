// Package emulate recognizes and emulates the RV64 `rdtime`/`rdtimeh`
// pseudo-instructions the JH7100 hardware traps on instead of executing
// (spec.md §4.3 IllegalInstruction handling, §9 "emulate_rdtime"). Both
// expand to a CSRRS reading a read-only CSR (`time`=0xC01, `timeh`=0xC81)
// into rd with rs1=x0; this package decodes that shape directly out of the
// raw instruction word fetched via csr.LoadU32MPRV, rather than pulling in
// a general RISC-V decoder, since it is the one instruction shape this
// firmware ever needs to recognize.
package emulate

import "github.com/Luchangcheng2333/rustsbi-jh7100/internal/trapctx"

const (
	opcodeSystem = 0x73
	funct3CSRRS  = 0b010

	csrTime  = 0xC01
	csrTimeh = 0xC81
)

// decoded holds the fields of a CSRRS instruction relevant to rdtime
// recognition.
type decoded struct {
	csr     uint32
	rs1     uint32
	rd      uint32
	isCSRRS bool
}

func decode(ins uint32) decoded {
	return decoded{
		csr:     ins >> 20,
		rs1:     (ins >> 15) & 0x1F,
		rd:      (ins >> 7) & 0x1F,
		isCSRRS: ins&0x7F == opcodeSystem && (ins>>12)&0x7 == funct3CSRRS,
	}
}

// Rdtime reports whether ins is `rdtime rd` (csrrs rd, time, x0).
func Rdtime(ins uint32) (rd uint32, ok bool) {
	d := decode(ins)
	if d.isCSRRS && d.rs1 == 0 && d.csr == csrTime {
		return d.rd, true
	}
	return 0, false
}

// Rdtimeh reports whether ins is `rdtimeh rd` (csrrs rd, timeh, x0).
func Rdtimeh(ins uint32) (rd uint32, ok bool) {
	d := decode(ins)
	if d.isCSRRS && d.rs1 == 0 && d.csr == csrTimeh {
		return d.rd, true
	}
	return 0, false
}

// Time is the CLINT time source rdtime/rdtimeh read from; internal/clint's
// Device satisfies it directly, so no extra adapter is needed.
type Time interface {
	Time() uint64
}

// Emulate attempts to emulate ins as rdtime/rdtimeh against ctx, writing the
// result into the decoded destination register and advancing mepc past the
// 4-byte instruction (spec.md §4.3: "emulate by returning the CLINT mtime
// value into the destination register and advance mepc"). Reports ok=false
// if ins is not one of those two shapes, leaving ctx untouched.
func Emulate(ctx *trapctx.Context, ins uint32, t Time) bool {
	if rd, ok := Rdtime(ins); ok {
		setReg(ctx, rd, t.Time())
		ctx.Mepc += 4
		return true
	}
	if rd, ok := Rdtimeh(ins); ok {
		setReg(ctx, rd, t.Time()>>32)
		ctx.Mepc += 4
		return true
	}
	return false
}

// setReg writes v into GPR x{rd}, a no-op for x0 (hardwired zero, and not
// represented in ctx.Regs at all).
func setReg(ctx *trapctx.Context, rd uint32, v uint64) {
	if rd == 0 {
		return
	}
	ctx.Regs[rd-1] = v
}
