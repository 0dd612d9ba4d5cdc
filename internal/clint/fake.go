package clint

// Fake is an in-memory stand-in for the CLINT MMIO block, grounded on the
// flat-array hardware fakes the m68k emulator tests use in place of a real
// bus. internal/hsm, internal/sbi and internal/execute tests depend only on
// the Device interface, so this never touches unsafe.Pointer or a real
// address.
type Fake struct {
	msip     map[uint64]bool
	mtimecmp map[uint64]uint64
	mtime    uint64
}

// NewFake returns a Fake with mtime starting at the given value.
func NewFake(mtime uint64) *Fake {
	return &Fake{
		msip:     make(map[uint64]bool),
		mtimecmp: make(map[uint64]uint64),
		mtime:    mtime,
	}
}

func (f *Fake) SetSoftwarePending(hart uint64)   { f.msip[hart] = true }
func (f *Fake) ClearSoftwarePending(hart uint64) { f.msip[hart] = false }
func (f *Fake) SoftwarePending(hart uint64) bool { return f.msip[hart] }
func (f *Fake) SetTimerCompare(hart uint64, cmp uint64) {
	f.mtimecmp[hart] = cmp
}
func (f *Fake) Time() uint64 { return f.mtime }

// Advance moves the fake clock forward, the way a test simulates the passage
// of CLINT time between a set_timer call and the expected interrupt.
func (f *Fake) Advance(delta uint64) { f.mtime += delta }

// TimerCompare exposes the last value a test's code under test programmed,
// with ok=false if the hart never called SetTimerCompare.
func (f *Fake) TimerCompare(hart uint64) (uint64, bool) {
	v, ok := f.mtimecmp[hart]
	return v, ok
}

var _ Device = (*Fake)(nil)
