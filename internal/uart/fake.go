package uart

// FakeConsole is an in-memory Console for tests: writes accumulate in Out,
// reads are served from a pre-loaded Input queue. Grounded on the same
// flat in-memory stand-in shape as internal/clint.Fake.
type FakeConsole struct {
	Out   []byte
	Input []byte
}

// NewFakeConsole returns a FakeConsole whose reads are served from input,
// in order.
func NewFakeConsole(input []byte) *FakeConsole {
	return &FakeConsole{Input: input}
}

func (f *FakeConsole) PutChar(c byte) {
	f.Out = append(f.Out, c)
}

func (f *FakeConsole) GetChar() (byte, bool) {
	if len(f.Input) == 0 {
		return 0, false
	}
	c := f.Input[0]
	f.Input = f.Input[1:]
	return c, true
}

func (f *FakeConsole) WriteString(s string) {
	f.Out = append(f.Out, s...)
}

var _ Console = (*FakeConsole)(nil)
