package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
)

// buildImage concatenates the SBI binary and an optional payload into one
// SD card image, the Go port of the original xtask_image's "cp
// rustsbi-jh7100.bin test-kernel.image" followed by "dd if=test-kernel.bin
// of=test-kernel.image bs=128k seek=1": the SBI binary occupies the image
// from offset 0, and payload is written starting at board.Image.PayloadOffset,
// zero-padding any gap the way dd's seek does.
//
// Unlike the original's shell-out to cp+dd, this copies in Go directly so
// it can report progress on the slower payload write via progressbar/v3 —
// worthwhile once images grow past a few MB, the same size regime
// tinyrange-cc uses the bar for.
func buildImage(sbiBin []byte, payload []byte, board Board, outPath string) error {
	size := int64(len(sbiBin))
	if payload != nil {
		end := board.Image.PayloadOffset + int64(len(payload))
		if end > size {
			size = end
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create image %s: %w", outPath, err)
	}
	defer out.Close()

	if err := out.Truncate(size); err != nil {
		return fmt.Errorf("size image: %w", err)
	}
	if _, err := out.WriteAt(sbiBin, 0); err != nil {
		return fmt.Errorf("write SBI binary: %w", err)
	}

	if payload != nil {
		bar := progressbar.DefaultBytes(int64(len(payload)), "writing payload")
		if _, err := out.Seek(board.Image.PayloadOffset, io.SeekStart); err != nil {
			return fmt.Errorf("seek to payload offset: %w", err)
		}
		if _, err := io.Copy(io.MultiWriter(out, bar), bytes.NewReader(payload)); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}

	if err := unix.Fsync(int(out.Fd())); err != nil {
		return fmt.Errorf("fsync image: %w", err)
	}

	slog.Info("wrote image", "path", outPath, "bytes", size)
	return nil
}
