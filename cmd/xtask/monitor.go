package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.bug.st/serial"
	"golang.org/x/term"
)

// runMonitor opens the board's serial console and pipes bytes between it
// and the host terminal until the user disconnects (Ctrl-], matching the
// convention of minicom/picocom-style monitors). Grounded directly on
// dev.Arduino's serial.Open/serial.Mode shape; unlike Arduino's
// request/response framing this is a plain bidirectional pipe, since the
// firmware's UART console (internal/uart) is a free-running byte stream,
// not a command protocol.
func runMonitor(board Board, portName string) error {
	if portName == "" {
		portName = board.Monitor.Port
	}
	if portName == "" {
		return fmt.Errorf("no serial port given and board.yaml has no monitor.port")
	}

	mode := &serial.Mode{
		BaudRate: board.Monitor.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", portName, err)
	}
	defer port.Close()
	port.SetReadTimeout(200 * time.Millisecond)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("put terminal in raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Fprintf(os.Stderr, "connected to %s at %d baud, ctrl-] to exit\r\n", portName, board.Monitor.BaudRate)

	done := make(chan error, 1)
	go func() { done <- copyToPort(port) }()
	go func() { done <- copyFromPort(port) }()

	return <-done
}

// copyFromPort forwards everything the board prints to the local stdout.
func copyFromPort(port serial.Port) error {
	buf := make([]byte, 256)
	for {
		n, err := port.Read(buf)
		if err != nil {
			return fmt.Errorf("read from board: %w", err)
		}
		if n == 0 {
			continue
		}
		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			return err
		}
	}
}

// copyToPort forwards host keystrokes to the board, exiting on ctrl-] (0x1d).
func copyToPort(port serial.Port) error {
	const exitByte = 0x1d
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if n == 0 {
			continue
		}
		if buf[0] == exitByte {
			return nil
		}
		if _, err := port.Write(buf[:n]); err != nil {
			return fmt.Errorf("write to board: %w", err)
		}
	}
}
