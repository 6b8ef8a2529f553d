//go:build linux

package gpio

import (
	"fmt"
	"log"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPin drives an output line through periph.io's register drivers.
type PeriphPin struct {
	kind string
	cfg  PinConfig
	pin  pgpio.PinIO
}

// NewPeriphPin looks up GPIO<number> in the periph registry.
// host.Init is safe to call more than once.
func NewPeriphPin(kind string, cfg PinConfig) (*PeriphPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	name := fmt.Sprintf("GPIO%d", cfg.Number)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%s: no pin named %s", kind, name)
	}
	return &PeriphPin{kind: kind, cfg: cfg, pin: p}, nil
}

// Setup switches the pin to output at its inactive logical level.
func (p *PeriphPin) Setup() {
	if err := p.pin.Out(p.level(false)); err != nil {
		log.Printf("gpio: setup %s: %v", p, err)
	}
}

// DigitalWrite sets the logical level, applying inversion.
func (p *PeriphPin) DigitalWrite(high bool) {
	if err := p.pin.Out(p.level(high)); err != nil {
		log.Printf("gpio: set %s: %v", p, err)
	}
}

func (p *PeriphPin) level(high bool) pgpio.Level {
	if p.cfg.Inverted {
		high = !high
	}
	if high {
		return pgpio.High
	}
	return pgpio.Low
}

func (p *PeriphPin) String() string {
	return fmt.Sprintf("%s via periph", Describe(p.kind, p.cfg))
}

// Close stops any ongoing pin activity. The output level is left as is.
func (p *PeriphPin) Close() error {
	if err := p.pin.Halt(); err != nil {
		return fmt.Errorf("halt %s: %w", p.kind, err)
	}
	return nil
}
