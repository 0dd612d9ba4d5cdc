// Package boot implements the per-hart bootstrap sequence of spec.md §4.6
// / §8 scenario 1: install the trap vector, let the boot hart bind the
// platform and release its peers, program PMP and trap delegation on
// every hart, then hand control to internal/execute.
//
// Grounded directly on the original firmware's rust_main: the hart-0-only
// branch (copy the payload, bind stdio/CLINT, peek the device tree, print
// the banner, release hart 1) versus the pause()-then-join branch every
// other hart takes, followed by set_pmp()/delegate_interrupt_exception()
// run unconditionally on every hart before execute_supervisor starts.
//
// This package assumes a working Go runtime is already present by the
// time its entry point runs — heap, goroutines, channels all work. That is
// a deliberate departure from mazboot, which patches the Go runtime's own
// bootstrap (g0/m0/scheduler init) to run hosted on bare metal; this
// firmware's coroutine design (internal/coro's doc comment) already opted
// out of that machinery, so there is nothing here playing the part of
// mazboot's init_heap/init_bss — see DESIGN.md.
package boot

import (
	"unsafe"

	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/clint"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/coro"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/delegate"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/dtb"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/execute"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/hsm"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/pmp"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbi"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/uart"
)

// implVersion is this firmware's SBI implementation version, reported by
// the Base extension's get_impl_version (spec.md §4.5) and printed in the
// boot banner.
const implVersion = 1

// implID is an unregistered placeholder; spec.md does not require
// matching a real upstream implementation ID.
const implID = 0xa11_50c1

// Config names the compile-time addresses and boot payload for one
// firmware image (spec.md §4.6's platform table, §8 scenario 1). There is
// no configuration file on the firmware side — SPEC_FULL.md §11 keeps
// these as Go constants the same way mazboot's kernel.go hardcodes its
// peripheral bases; cmd/xtask's board.yaml only configures the *host*
// tooling that builds and flashes an image, never the firmware binary
// itself.
type Config struct {
	HartCount       uint64
	BootHart        uint64
	UARTBase        uintptr
	CLINT           clint.Layout
	SupervisorEntry uint64

	// KernelImage is copied to KernelLoadAddr by the boot hart before any
	// hart enters the supervisor image (spec.md §8 scenario 1 "payload
	// copied to 0x8020_0000"). Nil skips the copy, for images that are
	// already linked in place.
	KernelImage    []byte
	KernelLoadAddr uintptr

	// DeviceTree is peeked for chosen/stdout-path and its address handed
	// to the supervisor image as the opaque a1 register, mirroring
	// opaque = DEVICE_TREE.as_ptr() in the original firmware.
	DeviceTree []byte
}

// DefaultConfig returns the JH7100 VisionFive-class platform's addresses
// (spec.md §4.6, §1: dual U74 hart, UART0, CLINT).
func DefaultConfig() Config {
	return Config{
		HartCount:       2,
		BootHart:        0,
		UARTBase:        uart.Base,
		CLINT:           clint.DefaultLayout,
		SupervisorEntry: 0x8020_0000,
		KernelLoadAddr:  0x8020_0000,
	}
}

// shared holds the state the boot hart constructs once and every other
// hart reads after being released by its IPI (spec.md §4.6: "exactly one
// hart performs global init", §5's IPI-then-read ordering). It is
// deliberately not behind a mutex: the only synchronization primitive
// between harts before the HSM exists at all is the release IPI itself,
// exactly as fragile and exactly as sufficient as the original firmware's
// equivalent pause()/send_soft(1) handoff.
type shared struct {
	console uart.Console
	dev     clint.Device
	mon     *hsm.Monitor
	opaque  uint64
}

var boot shared

// Run is the per-hart bootstrap entry point: cmd/jh7100sbi calls this
// once per hart with that hart's own mhartid. It never returns — the last
// step is internal/execute's Loop.Run.
func Run(cfg Config, hartID uint64) {
	coro.Init()

	if hartID == cfg.BootHart {
		runBootHart(cfg)
	} else {
		hsm.PauseHart(rawCLINT(cfg), hartID)
	}

	pmp.Configure(pmp.DefaultRegions)
	delegate.Apply()

	log := uart.NewLogger(boot.console)
	rt := coro.New(hartID, cfg.SupervisorEntry, boot.opaque)
	execute.New(rt, hartID, boot.mon, boot.dev, log).Run()
}

// rawCLINT returns a CLINT device bound to cfg before the shared state is
// constructed, for the non-boot hart's early pause — it only ever clears
// and reads the CLINT's own registers, never anything the boot hart's
// init touches.
func rawCLINT(cfg Config) clint.Device {
	return clint.New(cfg.CLINT)
}

// runBootHart performs the hart-0-only half of spec.md §8 scenario 1:
// bind the console and CLINT, copy the supervisor payload, peek the
// device tree, print the banner, bind the global SBI providers, and
// finally release every other hart with a software interrupt.
func runBootHart(cfg Config) {
	console := uart.New(cfg.UARTBase)
	console.Init()
	dev := clint.New(cfg.CLINT)
	mon := hsm.New(int(cfg.HartCount), cfg.BootHart, dev)

	log := uart.NewLogger(console)
	log.Println("RustSBI-JH7100")
	log.Print("[rustsbi] implementation version ")
	log.Hex32(implVersion)
	log.Println("")
	log.Print("[rustsbi] harts detected: ")
	log.Hex32(uint32(cfg.HartCount))
	log.Println("")

	var opaque uint64
	if len(cfg.DeviceTree) > 0 {
		opaque = uint64(uintptr(unsafe.Pointer(&cfg.DeviceTree[0])))
		if path, ok := dtb.StdoutPath(cfg.DeviceTree); ok {
			log.Println("[rustsbi] chosen/stdout-path: " + path)
		}
	}

	if cfg.KernelImage != nil && cfg.KernelLoadAddr != 0 {
		copyPayload(cfg.KernelImage, cfg.KernelLoadAddr)
	}

	sbi.Bind(sbi.Providers{
		Console:  console,
		Clint:    dev,
		HSM:      mon,
		SelfHart: func() uint64 { return cfg.BootHart },
		ImplID:   implID,
		ImplVer:  implVersion,
		Halt:     haltFunc(log),
	})

	boot = shared{console: console, dev: dev, mon: mon, opaque: opaque}

	log.Println("[rustsbi] enter supervisor")
	for h := uint64(0); h < cfg.HartCount; h++ {
		if h != cfg.BootHart {
			dev.SetSoftwarePending(h)
		}
	}
}

// copyPayload writes img to the physical load address, mirroring the
// original firmware's core::ptr::copy of the embedded test kernel to
// 0x8020_0000 before any hart is allowed to jump there.
func copyPayload(img []byte, loadAddr uintptr) {
	dst := unsafe.Slice((*byte)(unsafe.Pointer(loadAddr)), len(img))
	copy(dst, img)
}

// haltFunc returns the SRST/legacy-shutdown Halt callback (spec.md §4.5,
// §7): log the reason and park this hart forever. No recovery is
// attempted from here, same as a fatal condition in internal/execute.
func haltFunc(log *uart.Logger) func(string) {
	return func(reason string) {
		log.Println("[rustsbi] " + reason)
		for {
			csr.Wfi()
		}
	}
}
