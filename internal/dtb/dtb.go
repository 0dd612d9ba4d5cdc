// Package dtb extracts exactly one field from a flattened device tree blob:
// chosen/stdout-path, logged once at boot (spec.md §4.6 "Device tree... only
// chosen/stdout-path is read and logged"). Nothing else in the tree is
// interpreted; this firmware does not walk the tree for PMP regions,
// interrupt controllers, or any other node.
//
// Grounded on the raw big-endian FDT struct-block walk mazboot's DTB parser
// uses (dtb_qemu.go), adapted to operate over a []byte so it is testable
// without unsafe.Pointer; ReadFromMemory at the bottom is the one place
// that bridges a raw physical address into that slice.
package dtb

import "unsafe"

const (
	magic = 0xd00d_feed

	tagBeginNode = 1
	tagEndNode   = 2
	tagProp      = 3
	tagNop       = 4
	tagEnd       = 9
)

const (
	offMagic      = 0
	offOffStruct  = 8
	offOffStrings = 12
)

func be32(b []byte, off uint32) uint32 {
	return uint32(b[off])<<24 | uint32(b[off+1])<<16 | uint32(b[off+2])<<8 | uint32(b[off+3])
}

// align4 rounds off up to the next 4-byte boundary, the FDT struct block's
// padding rule for node names and property values.
func align4(off uint32) uint32 {
	return (off + 3) &^ 3
}

// StdoutPath returns the value of /chosen/stdout-path, if the blob is a
// valid FDT and that property is present. ok is false on any structural
// problem (bad magic, truncated block, malformed tag) or a missing
// /chosen node or property — this firmware treats "no stdout-path" as
// silently skippable, not fatal (spec.md §4.6 only logs it when present).
func StdoutPath(blob []byte) (path string, ok bool) {
	if len(blob) < 16 || be32(blob, offMagic) != magic {
		return "", false
	}
	offStruct := be32(blob, offOffStruct)
	offStrings := be32(blob, offOffStrings)

	p := offStruct
	depth := -1
	inChosen := false
	chosenDepth := -1

	for iter := 0; iter < 1_000_000; iter++ {
		if p+4 > uint32(len(blob)) {
			return "", false
		}
		tag := be32(blob, p)
		p += 4
		switch tag {
		case tagBeginNode:
			depth++
			name, next, ok := readCString(blob, p)
			if !ok {
				return "", false
			}
			p = align4(next)
			if depth == 1 && name == "chosen" {
				inChosen = true
				chosenDepth = depth
			}
		case tagEndNode:
			if inChosen && depth == chosenDepth {
				inChosen = false
			}
			depth--
			if depth < -1 {
				return "", false
			}
		case tagProp:
			if p+8 > uint32(len(blob)) {
				return "", false
			}
			plen := be32(blob, p)
			nameOff := be32(blob, p+4)
			p += 8
			if p+plen > uint32(len(blob)) {
				return "", false
			}
			if inChosen {
				name, _, ok := readCString(blob, offStrings+nameOff)
				if ok && name == "stdout-path" {
					return trimNUL(blob[p : p+plen]), true
				}
			}
			p = align4(p + plen)
		case tagNop:
		case tagEnd:
			return "", false
		default:
			return "", false
		}
	}
	return "", false
}

// readCString reads a NUL-terminated string starting at off, returning the
// offset of the byte just past the terminator.
func readCString(blob []byte, off uint32) (s string, next uint32, ok bool) {
	i := off
	for {
		if int(i) >= len(blob) {
			return "", 0, false
		}
		if blob[i] == 0 {
			return string(blob[off:i]), i + 1, true
		}
		i++
	}
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// ReadFromMemory views the FDT blob at a raw physical address as a []byte
// of the given size and extracts stdout-path; everything else in this
// package is a pure function over a slice. internal/boot does not call it:
// it passes Config.DeviceTree to StdoutPath directly.
func ReadFromMemory(addr uintptr, size uint32) (path string, ok bool) {
	if addr == 0 || size == 0 {
		return "", false
	}
	blob := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	return StdoutPath(blob)
}
