//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// ChardevPin is not available on non-Linux platforms.
type ChardevPin struct{}

// NewChardevPin returns an error on non-Linux platforms.
func NewChardevPin(chip, kind string, cfg PinConfig) (*ChardevPin, error) {
	return nil, errUnsupported
}

func (p *ChardevPin) Setup()                 {}
func (p *ChardevPin) DigitalWrite(high bool) {}
func (p *ChardevPin) String() string         { return "unsupported" }
func (p *ChardevPin) Close() error           { return nil }

// PeriphPin is not available on non-Linux platforms.
type PeriphPin struct{}

// NewPeriphPin returns an error on non-Linux platforms.
func NewPeriphPin(kind string, cfg PinConfig) (*PeriphPin, error) {
	return nil, errUnsupported
}

func (p *PeriphPin) Setup()                 {}
func (p *PeriphPin) DigitalWrite(high bool) {}
func (p *PeriphPin) String() string         { return "unsupported" }
func (p *PeriphPin) Close() error           { return nil }
