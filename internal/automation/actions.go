// Package automation binds named actions to the power sequencer and carries
// them to the single execution context that runs them.
package automation

import (
	"fmt"
	"math"
	"time"
)

// Action names accepted in config, MQTT commands and HTTP requests.
const (
	ActionPowerOn    = "athermo.periph_vcc_on"
	ActionPowerOff   = "athermo.periph_vcc_off"
	ActionPowerCycle = "athermo.power_cycle"
)

// DefaultDelayMs is the power-cycle off time when delay_ms is omitted.
const DefaultDelayMs = 500

// MaxDelayMs is the longest accepted power-cycle off time (32-bit milliseconds).
const MaxDelayMs = math.MaxUint32

// Controller is the set of operations actions can invoke.
type Controller interface {
	PowerOn()
	PowerOff()
	PowerCycle(delay time.Duration)
}

// Action is a unit of work run on the execution context.
type Action interface {
	Play()
}

// ActionFunc adapts a function to Action.
type ActionFunc func()

// Play calls f.
func (f ActionFunc) Play() { f() }

// PowerOnAction switches the peripherals on.
type PowerOnAction struct {
	Target Controller
}

// Play runs the action.
func (a PowerOnAction) Play() { a.Target.PowerOn() }

// PowerOffAction switches the peripherals off.
type PowerOffAction struct {
	Target Controller
}

// Play runs the action.
func (a PowerOffAction) Play() { a.Target.PowerOff() }

// PowerCycleAction switches the peripherals off for Delay, then on.
type PowerCycleAction struct {
	Target Controller
	Delay  time.Duration
}

// Play runs the action.
func (a PowerCycleAction) Play() { a.Target.PowerCycle(a.Delay) }

// Sequence plays its actions in order.
type Sequence []Action

// Play runs every action.
func (s Sequence) Play() {
	for _, a := range s {
		a.Play()
	}
}

// ActionSpec is the declarative form of an action.
type ActionSpec struct {
	Action  string `yaml:"action" json:"action"`
	DelayMs *int   `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`
}

// Build turns a spec into an Action bound to c.
func Build(c Controller, spec ActionSpec) (Action, error) {
	switch spec.Action {
	case ActionPowerOn, ActionPowerOff:
		if spec.DelayMs != nil {
			return nil, fmt.Errorf("%w: not accepted by %s", ErrInvalidDelay, spec.Action)
		}
		if spec.Action == ActionPowerOn {
			return PowerOnAction{Target: c}, nil
		}
		return PowerOffAction{Target: c}, nil
	case ActionPowerCycle:
		ms := DefaultDelayMs
		if spec.DelayMs != nil {
			ms = *spec.DelayMs
		}
		if ms < 0 {
			return nil, fmt.Errorf("%w: %d must be >= 0", ErrInvalidDelay, ms)
		}
		if int64(ms) > MaxDelayMs {
			return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidDelay, ms, int64(MaxDelayMs))
		}
		return PowerCycleAction{Target: c, Delay: time.Duration(ms) * time.Millisecond}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, spec.Action)
	}
}

// Names lists the accepted action names.
func Names() []string {
	return []string{ActionPowerOn, ActionPowerOff, ActionPowerCycle}
}
