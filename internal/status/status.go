// Package status provides a thread-safe status tracker for the athermo daemon.
// It is written from the run loop and read by HTTP handlers and MQTT
// system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/athermo/internal/power"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Backend      string
	PIRDisPin    string // description, or "not configured"
	PeriphVCCPin string
	Broker       string
	HTTPAddr     string
	Scripts      []string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Supply        power.State
	Counts        power.EventCounts
	LastEvent     *power.Event
	LastCycle     time.Time
	LastAction    string
	Pending       int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Supply:    power.StateUnknown,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Record applies a sequencer event. Used as the sequencer's observer.
func (t *Tracker) Record(e power.Event) {
	t.mu.Lock()
	t.snap.Supply = e.State
	t.snap.Counts.Add(e.Type)
	ev := e
	t.snap.LastEvent = &ev
	if e.Type == power.EventPowerCycle {
		t.snap.LastCycle = e.Timestamp
	}
	t.mu.Unlock()
}

// SetLastAction records the name of the action most recently started.
func (t *Tracker) SetLastAction(name string) {
	t.mu.Lock()
	t.snap.LastAction = name
	t.mu.Unlock()
}

// SetPending sets the number of queued actions.
func (t *Tracker) SetPending(n int) {
	t.mu.Lock()
	t.snap.Pending = n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBuffered sets the number of MQTT messages held for reconnection.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = n
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.LastEvent != nil {
		ev := *s.LastEvent
		s.LastEvent = &ev
	}
	s.Config.Scripts = append([]string(nil), s.Config.Scripts...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
