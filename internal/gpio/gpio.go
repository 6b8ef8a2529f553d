// Package gpio provides output pins with hardware abstraction.
// Real pins use the Linux GPIO character device or periph.io.
// The fake implementation records writes for testing without hardware.
package gpio

import "fmt"

// Logical levels.
const (
	Low  = false
	High = true
)

// Default pin assignments (BCM numbering).
const (
	DefaultPinPIRDis    = 23 // PIR reset-line disconnect
	DefaultPinPeriphVCC = 24 // P-MOSFET gate for peripheral supply
)

// DefaultChip is the character device used by the chardev backend.
const DefaultChip = "gpiochip0"

// OutputPin is a digital output line.
//
// Implementations never return errors from Setup or DigitalWrite: failures
// are logged by the implementation and the line behaves as unconfigured.
type OutputPin interface {
	// Setup claims the line and configures it as an output.
	Setup()

	// DigitalWrite drives the line to the given logical level.
	DigitalWrite(high bool)

	// String describes the pin for diagnostics.
	String() string
}

// PinConfig identifies a line and its polarity.
type PinConfig struct {
	Number   int
	Inverted bool
}

// Describe formats a pin assignment the way diagnostics print it.
func Describe(kind string, cfg PinConfig) string {
	s := fmt.Sprintf("%s GPIO%d", kind, cfg.Number)
	if cfg.Inverted {
		s += " (inverted)"
	}
	return s
}
