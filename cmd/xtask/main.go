// Command xtask is the build/packaging/flash/monitor tool for the
// StarFive JH7100 SBI firmware (SPEC_FULL.md §10): make, asm, image and
// gdb, the same four subcommands the original project's Rust "cargo
// xtask" offered, plus monitor, a live serial console this spec adds.
//
// Grounded on the original source's clap_app! subcommand dispatch
// (xtask/src/main.rs), re-expressed with the standard flag package and
// the run() error convention tinyrange-cc/cmd/cc/main.go uses.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "xtask: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		usage()
		return fmt.Errorf("no subcommand given")
	}

	sub := os.Args[1]
	args := os.Args[2:]

	switch sub {
	case "make":
		fs := flag.NewFlagSet("make", flag.ExitOnError)
		boardPath := fs.String("board", "board.yaml", "path to the board descriptor")
		if err := fs.Parse(args); err != nil {
			return err
		}
		board, err := LoadBoard(*boardPath)
		if err != nil {
			return err
		}
		return cmdMake(board)

	case "asm":
		fs := flag.NewFlagSet("asm", flag.ExitOnError)
		boardPath := fs.String("board", "board.yaml", "path to the board descriptor")
		if err := fs.Parse(args); err != nil {
			return err
		}
		board, err := LoadBoard(*boardPath)
		if err != nil {
			return err
		}
		return cmdAsm(board)

	case "image":
		fs := flag.NewFlagSet("image", flag.ExitOnError)
		boardPath := fs.String("board", "board.yaml", "path to the board descriptor")
		payload := fs.String("payload", "", "payload binary to embed at board.image.payloadOffset")
		out := fs.String("out", "", "output image path (default: dist/<board>/<board>.image)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		board, err := LoadBoard(*boardPath)
		if err != nil {
			return err
		}
		return cmdImage(board, *payload, *out)

	case "gdb":
		fs := flag.NewFlagSet("gdb", flag.ExitOnError)
		boardPath := fs.String("board", "board.yaml", "path to the board descriptor")
		if err := fs.Parse(args); err != nil {
			return err
		}
		board, err := LoadBoard(*boardPath)
		if err != nil {
			return err
		}
		return cmdGdb(board)

	case "monitor":
		fs := flag.NewFlagSet("monitor", flag.ExitOnError)
		boardPath := fs.String("board", "board.yaml", "path to the board descriptor")
		port := fs.String("port", "", "serial device (default: board.monitor.port)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		board, err := LoadBoard(*boardPath)
		if err != nil {
			return err
		}
		return runMonitor(board, *port)

	default:
		usage()
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: xtask <make|asm|image|gdb|monitor> [flags]")
}

func moduleRoot() (string, error) {
	out, err := exec.Command("go", "env", "GOMOD").Output()
	if err != nil {
		return "", fmt.Errorf("locate module root: %w", err)
	}
	gomod := strings.TrimSpace(string(out))
	if gomod == "" || gomod == os.DevNull {
		return "", fmt.Errorf("xtask must run inside the firmware module")
	}
	return filepath.Dir(gomod), nil
}

func cmdMake(board Board) error {
	root, err := moduleRoot()
	if err != nil {
		return err
	}
	if err := buildSBI(root, board); err != nil {
		return err
	}
	return binarySBI(root, board)
}

func cmdAsm(board Board) error {
	root, err := moduleRoot()
	if err != nil {
		return err
	}
	if err := buildSBI(root, board); err != nil {
		return err
	}
	return asmSBI(root, board)
}

func cmdImage(board Board, payloadPath, outPath string) error {
	root, err := moduleRoot()
	if err != nil {
		return err
	}
	if err := buildSBI(root, board); err != nil {
		return err
	}
	if err := binarySBI(root, board); err != nil {
		return err
	}

	sbiBin, err := os.ReadFile(binPath(root, board))
	if err != nil {
		return fmt.Errorf("read built SBI binary: %w", err)
	}

	var payload []byte
	if payloadPath != "" {
		payload, err = os.ReadFile(payloadPath)
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
	}

	if outPath == "" {
		outPath = filepath.Join(distDir(root, board), board.Name+".image")
	}
	return buildImage(sbiBin, payload, board, outPath)
}

func cmdGdb(board Board) error {
	root, err := moduleRoot()
	if err != nil {
		return err
	}
	if err := buildSBI(root, board); err != nil {
		return err
	}
	if err := binarySBI(root, board); err != nil {
		return err
	}
	slog.Info("starting gdb", "port", board.GdbPort)
	return runGdb(root, board)
}
