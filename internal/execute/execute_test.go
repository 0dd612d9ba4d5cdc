package execute

import (
	"sync"
	"testing"

	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/clint"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/coro"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/hsm"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbi"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/uart"
)

// x1-based GPR offsets into trapctx.Context.Regs, mirroring the private
// constants trapctx itself uses internally; duplicated here because a
// synthetic ecall needs to set a6/a7, which only the real trap vector
// writes outside of this package.
const (
	regA0 = 9
	regA6 = 15
	regA7 = 16
)

var bindOnce sync.Once

// bindTestProviders binds internal/sbi's global Providers exactly once
// for the whole test binary: sbi.Bind panics on a second call, and this
// package (unlike internal/sbi's own tests) has no access to its private
// bound flag to reset between tests.
func bindTestProviders() *hsm.Monitor {
	dev := clint.NewFake(0)
	mon := hsm.New(2, 0, dev)
	bindOnce.Do(func() {
		sbi.Bind(sbi.Providers{
			Console:  uart.NewFakeConsole(nil),
			Clint:    dev,
			HSM:      mon,
			SelfHart: func() uint64 { return 0 },
			ImplID:   0xfeed,
			ImplVer:  1,
			Halt:     func(string) {},
		})
	})
	return mon
}

// Only handleSbiCall's ordinary (error,value) write-back is exercised
// here: every other branch in this package — the non-retentive rewrite,
// transferTrap, handleMachineTimer, the illegal-instruction fetch —
// reaches a real mstatus/satp/scause CSR or the MPRV-guarded load, none of
// which exist off real RISC-V hardware (the same boundary internal/hsm's
// Pause and internal/csr itself are never unit-tested across).
func TestHandleSbiCallWritesBackErrorAndValue(t *testing.T) {
	mon := bindTestProviders()

	rt := coro.New(0, 0x8020_0000, 0)
	l := New(rt, 0, mon, clint.NewFake(0), nil)

	ctx := rt.Context()
	ctx.Regs[regA7] = sbi.ExtBase
	ctx.Regs[regA6] = 3 // fnProbeExtension
	ctx.Regs[regA0] = sbi.ExtTime
	ctx.Mepc = 0x1000

	l.handleSbiCall(ctx)

	if ctx.A0() != 0 {
		t.Fatalf("a0 = %#x, want SBI_SUCCESS (0)", ctx.A0())
	}
	if ctx.A1() != 1 {
		t.Fatalf("a1 = %d, want 1 (TIME extension is probed supported)", ctx.A1())
	}
	if ctx.Mepc != 0x1004 {
		t.Fatalf("mepc = %#x, want %#x (advanced past the ecall)", ctx.Mepc, 0x1004)
	}
}

func TestHandleSbiCallUnknownExtensionIsNotSupported(t *testing.T) {
	mon := bindTestProviders()

	rt := coro.New(0, 0x8020_0000, 0)
	l := New(rt, 0, mon, clint.NewFake(0), nil)

	ctx := rt.Context()
	ctx.Regs[regA7] = 0x1234_5678
	ctx.Mepc = 0x2000

	l.handleSbiCall(ctx)

	if int64(ctx.A0()) != -2 {
		t.Fatalf("a0 = %d, want -2 (SBI_ERR_NOT_SUPPORTED)", int64(ctx.A0()))
	}
	if ctx.Mepc != 0x2004 {
		t.Fatalf("mepc = %#x, want %#x", ctx.Mepc, 0x2004)
	}
}
