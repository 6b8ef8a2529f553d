// Package mqtt publishes power events and receives action commands, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/athermo/internal/automation"
	"github.com/sweeney/athermo/internal/power"
)

// Topics.
const (
	TopicEvents  = "athermo/power/events"
	TopicSystem  = "athermo/power/system"
	TopicCommand = "athermo/power/command"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a power event. Errors are reported but must not stop
	// the daemon.
	Publish(event power.Event) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how
// many messages wait for it.
type ConnectionStatus interface {
	IsConnected() bool
	Pending() int
}

// CommandHandler receives decoded commands. It runs on the MQTT client's
// goroutine and must not touch the sequencer directly.
type CommandHandler func(cmd automation.Command)

// Subscriber delivers commands from the command topic.
type Subscriber interface {
	SubscribeCommands(handler CommandHandler) error
}

// SystemEvent represents a system lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // pre-formatted JSON; returned as-is by FormatSystemPayload
	Retained   bool
}

// Payload is the event message envelope.
type Payload struct {
	Power PowerPayload `json:"power"`
}

// PowerPayload contains the event details.
type PowerPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	DelayMs   *int64 `json:"delay_ms,omitempty"`
}

// FormatPayload creates the JSON payload for a power event.
func FormatPayload(event power.Event) ([]byte, error) {
	p := PowerPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		State:     string(event.State),
	}
	if event.Type == power.EventPowerCycle {
		ms := event.Delay.Milliseconds()
		p.DelayMs = &ms
	}
	return json.Marshal(Payload{Power: p})
}

// SystemPayload is the envelope for simple system events that carry no
// status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// ParseCommand decodes a command message. Unknown fields are ignored; an
// empty object is rejected.
func ParseCommand(payload []byte) (automation.Command, error) {
	var cmd automation.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return automation.Command{}, fmt.Errorf("%w: %v", automation.ErrInvalidCommand, err)
	}
	if cmd.Action == "" && cmd.Script == "" {
		return automation.Command{}, fmt.Errorf("%w: no action or script", automation.ErrInvalidCommand)
	}
	return cmd, nil
}
