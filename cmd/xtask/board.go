package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Board is the host-side board descriptor (SPEC_FULL.md §11): the memory
// map and image layout xtask needs to build, image and flash a firmware
// for one physical board. The firmware binary itself has no equivalent
// file — internal/boot.DefaultConfig hardcodes the same addresses as Go
// constants, the way mazboot/main/kernel.go hardcodes its peripheral
// bases. board.yaml only configures the tooling that produces an image,
// never the image's own running code.
type Board struct {
	Name string `yaml:"name"`

	// PackagePath is the Go import path xtask builds for the SBI image,
	// relative to the module root.
	PackagePath string `yaml:"packagePath"`

	GOARCH string `yaml:"goarch"`
	GOOS   string `yaml:"goos"`

	UARTBase   uint64 `yaml:"uartBase"`
	CLINTBase  uint64 `yaml:"clintBase"`
	KernelLoad uint64 `yaml:"kernelLoadAddr"`

	// Objcopy and Gdb name the cross toolchain binaries xtask shells out
	// to; left overridable since riscv64-unknown-elf-* and
	// riscv-none-embed-* installs both appear in the wild.
	Objcopy string `yaml:"objcopy"`
	Gdb     string `yaml:"gdb"`

	// Image describes the SD card layout xtask's image subcommand
	// produces: the SBI binary at offset 0, a payload at PayloadOffset.
	Image struct {
		PayloadOffset int64 `yaml:"payloadOffset"`
	} `yaml:"image"`

	// Monitor names the default serial device and baud rate for xtask
	// monitor; both are overridable on the command line.
	Monitor struct {
		Port     string `yaml:"port"`
		BaudRate int    `yaml:"baudRate"`
	} `yaml:"monitor"`

	// GdbPort is the port xtask gdb connects to via "target extended-remote".
	GdbPort int `yaml:"gdbPort"`
}

// LoadBoard reads and parses a board descriptor.
func LoadBoard(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("read board descriptor: %w", err)
	}
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Board{}, fmt.Errorf("parse board descriptor %s: %w", path, err)
	}
	if b.PackagePath == "" {
		return Board{}, fmt.Errorf("board descriptor %s: packagePath is required", path)
	}
	b.applyDefaults()
	return b, nil
}

func (b *Board) applyDefaults() {
	if b.GOARCH == "" {
		b.GOARCH = "riscv64"
	}
	if b.GOOS == "" {
		b.GOOS = "linux"
	}
	if b.Objcopy == "" {
		b.Objcopy = "riscv64-unknown-elf-objcopy"
	}
	if b.Gdb == "" {
		b.Gdb = "riscv64-unknown-elf-gdb"
	}
	if b.Monitor.BaudRate == 0 {
		b.Monitor.BaudRate = 115200
	}
	if b.GdbPort == 0 {
		b.GdbPort = 3333
	}
}
