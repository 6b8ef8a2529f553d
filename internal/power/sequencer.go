// Package power sequences the PIR reset-disconnect line and the peripheral
// supply gate.
//
// The peripheral supply is switched by a P-channel MOSFET: driving the gate
// LOW powers the peripherals, HIGH cuts them off. The PIR disconnect line is
// driven HIGH once at boot and never written again.
//
// A Sequencer keeps no state besides its two pin references and whether
// Setup has run. It is not safe
// for concurrent use; every method must run on the same execution context.
package power

import (
	"log"
	"time"

	"github.com/sweeney/athermo/internal/component"
	"github.com/sweeney/athermo/internal/gpio"
)

// DefaultCycleDelay is the off time used by PowerCycle when none is given.
const DefaultCycleDelay = 500 * time.Millisecond

// Boot levels.
const (
	pirDisBootLevel = gpio.High // PIR disconnected from reset
	supplyOn        = gpio.Low
	supplyOff       = gpio.High
)

// Sequencer drives the two power-control lines.
type Sequencer struct {
	pirDis    gpio.OutputPin
	periphVCC gpio.OutputPin

	logger   *log.Logger
	sleep    func(time.Duration)
	now      func() time.Time
	observer func(Event)

	setupDone bool
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

// WithSleep replaces time.Sleep for the power-cycle wait.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Sequencer) { s.sleep = sleep }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// WithObserver registers a callback invoked after each operation that
// wrote to the supply line.
func WithObserver(fn func(Event)) Option {
	return func(s *Sequencer) { s.observer = fn }
}

// New returns a Sequencer over the given pins. Either pin may be nil, in
// which case operations on it are no-ops. The pins stay owned by the
// caller and must outlive the Sequencer.
func New(pirDis, periphVCC gpio.OutputPin, opts ...Option) *Sequencer {
	s := &Sequencer{
		pirDis:    pirDis,
		periphVCC: periphVCC,
		logger:    log.Default(),
		sleep:     time.Sleep,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupPriority places the sequencer in the hardware tier, ahead of
// default-tier components.
func (s *Sequencer) SetupPriority() float64 {
	return component.PriorityHardware
}

// Setup configures both lines and drives their boot levels. The PIR line is
// handled first so the reset line is protected before peripherals draw
// power. Missing pins are logged and skipped. Only the first call has any
// effect.
func (s *Sequencer) Setup() {
	if s.setupDone {
		s.logger.Printf("power: setup already done, ignoring")
		return
	}
	s.setupDone = true
	s.logger.Printf("power: setting up")

	if s.pirDis != nil {
		s.pirDis.Setup()
		s.pirDis.DigitalWrite(pirDisBootLevel)
		s.logger.Printf("power: PIR_DIS set HIGH, PIR disconnected from reset")
	} else {
		s.logger.Printf("power: error: PIR_DIS pin not configured!")
	}

	if s.periphVCC != nil {
		s.periphVCC.Setup()
		s.periphVCC.DigitalWrite(supplyOn)
		s.logger.Printf("power: PERIPH_VCC set LOW, peripherals powered ON")
		s.notify(Event{Type: EventBoot, State: StateOn})
	} else {
		s.logger.Printf("power: error: PERIPH_VCC pin not configured!")
	}
}

// DumpConfig logs the pin assignments and boot levels.
func (s *Sequencer) DumpConfig() {
	s.logger.Printf("power: ATHERMO component:")
	s.logger.Printf("power:   PIR_DIS pin: %s", describe(s.pirDis))
	s.logger.Printf("power:   PERIPH_VCC pin: %s", describe(s.periphVCC))
	s.logger.Printf("power:   Boot State: PIR_DIS=HIGH, PERIPH_VCC=LOW (power ON)")
}

// PowerOn drives the supply gate LOW. Every call writes the line.
func (s *Sequencer) PowerOn() {
	if s.periphVCC == nil {
		return
	}
	s.periphVCC.DigitalWrite(supplyOn)
	s.logger.Printf("power: peripherals ON (PERIPH_VCC=LOW)")
	s.notify(Event{Type: EventPowerOn, State: StateOn})
}

// PowerOff drives the supply gate HIGH. Every call writes the line.
func (s *Sequencer) PowerOff() {
	if s.periphVCC == nil {
		return
	}
	s.periphVCC.DigitalWrite(supplyOff)
	s.logger.Printf("power: peripherals OFF (PERIPH_VCC=HIGH)")
	s.notify(Event{Type: EventPowerOff, State: StateOff})
}

// PowerCycle switches the peripherals off, blocks for delay, then switches
// them back on. Negative delays are treated as zero. Both writes happen
// even when delay is zero.
func (s *Sequencer) PowerCycle(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	s.logger.Printf("power: power cycling peripherals (delay: %d ms)", delay.Milliseconds())

	s.PowerOff()
	if delay > 0 {
		s.sleep(delay)
	}
	s.PowerOn()

	s.logger.Printf("power: power cycle complete")
	if s.periphVCC != nil {
		s.notify(Event{Type: EventPowerCycle, State: StateOn, Delay: delay})
	}
}

func (s *Sequencer) notify(e Event) {
	if s.observer == nil {
		return
	}
	e.Timestamp = s.now()
	s.observer(e)
}

func describe(p gpio.OutputPin) string {
	if p == nil {
		return "not configured"
	}
	return p.String()
}
