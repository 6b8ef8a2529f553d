//go:build linux

package gpio

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

// ChardevPin drives an output line through the Linux GPIO character device.
type ChardevPin struct {
	chip string
	kind string
	cfg  PinConfig
	line *gpiocdev.Line
	err  error // last Setup failure
}

// NewChardevPin checks that the chip exists and the line is free. The line
// itself is not requested until Setup.
func NewChardevPin(chip, kind string, cfg PinConfig) (*ChardevPin, error) {
	if cfg.Number < 0 {
		return nil, fmt.Errorf("%s: invalid line offset %d", kind, cfg.Number)
	}
	if chip == "" {
		chip = DefaultChip
	}
	if err := checkLine(chip, cfg.Number); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return &ChardevPin{chip: chip, kind: kind, cfg: cfg}, nil
}

func checkLine(chip string, offset int) error {
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer("athermo"))
	if err != nil {
		return fmt.Errorf("open gpio chip: %w", err)
	}
	defer c.Close()

	if offset >= c.Lines() {
		return fmt.Errorf("line %d out of range, %s has %d lines", offset, chip, c.Lines())
	}
	info, err := c.LineInfo(offset)
	if err != nil {
		return fmt.Errorf("line %d info: %w", offset, err)
	}
	if info.Used {
		return fmt.Errorf("line %d busy (consumer %q)", offset, info.Consumer)
	}
	return nil
}

// Setup requests the line as an output driven to its inactive level.
// Inverted pins are requested active-low so logical levels stay logical.
func (p *ChardevPin) Setup() {
	if p.line != nil {
		return
	}
	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer("athermo"),
		gpiocdev.AsOutput(0),
	}
	if p.cfg.Inverted {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := gpiocdev.RequestLine(p.chip, p.cfg.Number, opts...)
	if err != nil {
		log.Printf("gpio: request %s: %v", p, err)
		p.err = err
		return
	}
	p.line = line
	p.err = nil
}

// DigitalWrite sets the logical level. Writes before a successful Setup are
// dropped with a log line.
func (p *ChardevPin) DigitalWrite(high bool) {
	if p.line == nil {
		log.Printf("gpio: write to unconfigured %s dropped", p)
		return
	}
	v := 0
	if high {
		v = 1
	}
	if err := p.line.SetValue(v); err != nil {
		log.Printf("gpio: set %s=%d: %v", p, v, err)
	}
}

func (p *ChardevPin) String() string {
	if p.err != nil {
		return fmt.Sprintf("%s on %s (request failed)", Describe(p.kind, p.cfg), p.chip)
	}
	return fmt.Sprintf("%s on %s", Describe(p.kind, p.cfg), p.chip)
}

// Close releases the line. The kernel keeps the last driven value.
func (p *ChardevPin) Close() error {
	if p.line == nil {
		return nil
	}
	err := p.line.Close()
	p.line = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", p.kind, err)
	}
	return nil
}
