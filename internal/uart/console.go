package uart

// Console is the byte-oriented capability spec.md §1 says the UART driver
// is specified only through: a writer and a non-blocking reader. Binding
// through this interface, rather than *UART directly, is what lets
// internal/sbi's legacy console extension and internal/boot's panic/banner
// paths run under test against a Fake instead of real MMIO.
type Console interface {
	PutChar(c byte)
	GetChar() (byte, bool)
	WriteString(s string)
}

var _ Console = (*UART)(nil)

// Logger writes boot/panic diagnostics with mazboot's hex-digit-at-a-time
// style (kernel.go's printHex64/printHex32) over a Console's raw polling
// writes, without fmt or a host-side logging library (no driver in this
// tree ever imports log/slog: see DESIGN.md).
type Logger struct {
	console Console
}

// NewLogger wraps a Console for structured-ish boot/panic output.
func NewLogger(c Console) *Logger {
	return &Logger{console: c}
}

// Println writes s followed by a newline.
func (l *Logger) Println(s string) {
	l.console.WriteString(s)
	l.console.WriteString("\n")
}

// Print writes s with no trailing newline.
func (l *Logger) Print(s string) {
	l.console.WriteString(s)
}

// Hex64 writes v as a 16-digit, zero-padded hex string.
func (l *Logger) Hex64(v uint64) {
	var buf [16]byte
	hexDigits(v, buf[:])
	l.writeBuf(buf[:])
}

// Hex32 writes v as an 8-digit, zero-padded hex string.
func (l *Logger) Hex32(v uint32) {
	var buf [8]byte
	hexDigits(uint64(v), buf[:])
	l.writeBuf(buf[:])
}

func hexDigits(v uint64, buf []byte) {
	n := len(buf)
	for i := 0; i < n; i++ {
		shift := uint((n - 1 - i) * 4)
		nibble := (v >> shift) & 0xF
		if nibble < 10 {
			buf[i] = byte('0' + nibble)
		} else {
			buf[i] = byte('a' + nibble - 10)
		}
	}
}

func (l *Logger) writeBuf(buf []byte) {
	for _, c := range buf {
		l.console.PutChar(c)
	}
}
