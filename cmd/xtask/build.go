package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// distDir is where xtask places build artifacts, the Go-toolchain
// equivalent of the original xtask's target/<triple>/<debug|release>
// (dist_dir in the original source). There is no debug/release split here:
// go build always optimizes, so one directory per board suffices.
func distDir(moduleRoot string, board Board) string {
	return filepath.Join(moduleRoot, "dist", board.Name)
}

func elfPath(moduleRoot string, board Board) string {
	return filepath.Join(distDir(moduleRoot, board), board.Name+".elf")
}

func binPath(moduleRoot string, board Board) string {
	return filepath.Join(distDir(moduleRoot, board), board.Name+".bin")
}

// buildSBI cross-compiles the firmware package named by board.PackagePath,
// the Go-toolchain equivalent of the original xtask_build_sbi's
// "cargo build --package rustsbi-jh7100 --target riscv64imac-unknown-none-elf".
func buildSBI(moduleRoot string, board Board) error {
	dir := distDir(moduleRoot, board)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dist dir: %w", err)
	}
	out := elfPath(moduleRoot, board)

	slog.Info("building firmware", "board", board.Name, "goarch", board.GOARCH, "out", out)
	cmd := exec.Command("go", "build", "-o", out, board.PackagePath)
	cmd.Dir = moduleRoot
	cmd.Env = append(os.Environ(), "GOARCH="+board.GOARCH, "GOOS="+board.GOOS, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	return nil
}

// binarySBI strips the ELF down to a raw physical-address image with the
// board's objcopy (xtask_binary_sbi's --binary-architecture=riscv64
// --strip-all -O binary, ported unchanged since Go's toolchain has no
// built-in equivalent of rust-objcopy).
func binarySBI(moduleRoot string, board Board) error {
	elf := elfPath(moduleRoot, board)
	out := binPath(moduleRoot, board)

	slog.Info("converting ELF to raw binary", "objcopy", board.Objcopy, "out", out)
	cmd := exec.Command(board.Objcopy, elf,
		"--binary-architecture="+board.GOARCH,
		"--strip-all",
		"-O", "binary", out)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", board.Objcopy, err)
	}
	return nil
}

// asmSBI disassembles the built ELF with objdump, the Go-toolchain
// equivalent of xtask_asm_sbi's riscv-none-embed-objdump invocation.
// go build/go tool objdump exists but does not target bare-metal riscv64
// ELF the way a cross objdump does, so this shells to the same cross
// toolchain binarySBI uses, substituting "objdump" for "objcopy" in its name.
func asmSBI(moduleRoot string, board Board) error {
	elf := elfPath(moduleRoot, board)
	objdump := crossTool(board.Objcopy, "objcopy", "objdump")

	cmd := exec.Command(objdump, "--disassemble", "--demangle", elf)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", objdump, err)
	}
	return nil
}

// runGdb connects a cross GDB to a waiting QEMU/OpenOCD gdbstub, the
// Go-toolchain port of xtask_unmatched_gdb. The original's ctrlc handler
// (disabling Ctrl-C exit so it reaches gdb instead of killing xtask) has no
// analogue here: exec.Command with inherited stdio already forwards signals
// to the child first on Unix, so gdb sees Ctrl-C before xtask's own
// default disposition would act on it.
func runGdb(moduleRoot string, board Board) error {
	elf := elfPath(moduleRoot, board)

	cmd := exec.Command(board.Gdb,
		"--eval-command", "file "+elf,
		"--eval-command", fmt.Sprintf("target extended-remote localhost:%d", board.GdbPort),
		"--quiet")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", board.Gdb, err)
	}
	return nil
}

// crossTool swaps one suffix of a cross toolchain binary name for another,
// e.g. riscv64-unknown-elf-objcopy -> riscv64-unknown-elf-objdump.
func crossTool(name, oldSuffix, newSuffix string) string {
	if n := len(name) - len(oldSuffix); n >= 0 && name[n:] == oldSuffix {
		return name[:n] + newSuffix
	}
	return newSuffix
}
