package gpio

import (
	"fmt"
	"time"
)

// Write is a single recorded DigitalWrite.
type Write struct {
	Level bool
	At    time.Time
}

// FakePin is a test double that records setup calls and writes.
type FakePin struct {
	// Name is returned by String.
	Name string

	// SetupCalls counts calls to Setup.
	SetupCalls int

	// Writes contains every DigitalWrite in order.
	Writes []Write

	// Now stamps writes; defaults to time.Now.
	Now func() time.Time
}

// NewFakePin creates a FakePin with the given name.
func NewFakePin(name string) *FakePin {
	return &FakePin{Name: name, Now: time.Now}
}

// Setup records the call.
func (f *FakePin) Setup() {
	f.SetupCalls++
}

// DigitalWrite records the level with a timestamp.
func (f *FakePin) DigitalWrite(high bool) {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	f.Writes = append(f.Writes, Write{Level: high, At: now()})
}

// String returns the pin name.
func (f *FakePin) String() string {
	return fmt.Sprintf("fake %s", f.Name)
}

// Level returns the last written level and whether any write happened.
func (f *FakePin) Level() (bool, bool) {
	if len(f.Writes) == 0 {
		return false, false
	}
	return f.Writes[len(f.Writes)-1].Level, true
}

// Levels returns the written levels in order.
func (f *FakePin) Levels() []bool {
	out := make([]bool, len(f.Writes))
	for i, w := range f.Writes {
		out[i] = w.Level
	}
	return out
}

// Reset clears recorded calls.
func (f *FakePin) Reset() {
	f.SetupCalls = 0
	f.Writes = nil
}
