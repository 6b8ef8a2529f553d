package power

import "time"

// State is the observed state of the peripheral supply.
type State string

const (
	StateOn      State = "ON"
	StateOff     State = "OFF"
	StateUnknown State = "UNKNOWN"
)

// EventType names a completed power operation.
type EventType string

const (
	EventBoot       EventType = "BOOT"
	EventPowerOn    EventType = "POWER_ON"
	EventPowerOff   EventType = "POWER_OFF"
	EventPowerCycle EventType = "POWER_CYCLE"
)

// Event reports an operation that wrote to the peripheral supply line.
type Event struct {
	Timestamp time.Time
	Type      EventType
	State     State         // supply state after the operation
	Delay     time.Duration // POWER_CYCLE only
}

// EventCounts tracks operations since startup.
type EventCounts struct {
	On     int
	Off    int
	Cycles int
}

// Add counts an event. BOOT counts as a power-on.
func (c *EventCounts) Add(t EventType) {
	switch t {
	case EventPowerOn, EventBoot:
		c.On++
	case EventPowerOff:
		c.Off++
	case EventPowerCycle:
		c.Cycles++
	}
}
