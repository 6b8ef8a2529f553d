package mqtt

import (
	"github.com/sweeney/athermo/internal/automation"
	"github.com/sweeney/athermo/internal/power"
)

// FakeClient records published events and lets tests inject commands.
type FakeClient struct {
	// Events contains all power events that were published.
	Events []power.Event

	// Payloads contains the JSON payloads for Events.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for SystemEvents.
	SystemPayloads [][]byte

	// PublishError, if set, is returned by Publish.
	PublishError error

	// PublishSystemError, if set, is returned by PublishSystem.
	PublishSystemError error

	// SubscribeError, if set, is returned by SubscribeCommands.
	SubscribeError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// Buffered controls the return value of Pending.
	Buffered int

	handler CommandHandler
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

// Publish records the power event.
func (f *FakeClient) Publish(event power.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// SubscribeCommands stores the handler for Deliver.
func (f *FakeClient) SubscribeCommands(handler CommandHandler) error {
	if f.SubscribeError != nil {
		return f.SubscribeError
	}
	f.handler = handler
	return nil
}

// Deliver simulates a message on the command topic. Returns false if the
// payload did not parse or nothing is subscribed.
func (f *FakeClient) Deliver(payload []byte) bool {
	if f.handler == nil {
		return false
	}
	cmd, err := ParseCommand(payload)
	if err != nil {
		return false
	}
	f.handler(cmd)
	return true
}

// DeliverCommand passes an already decoded command to the handler.
func (f *FakeClient) DeliverCommand(cmd automation.Command) bool {
	if f.handler == nil {
		return false
	}
	f.handler(cmd)
	return true
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Pending returns Buffered.
func (f *FakeClient) Pending() int {
	return f.Buffered
}

// Reset clears recorded events and injected errors.
func (f *FakeClient) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.SubscribeError = nil
	f.Connected = false
	f.Buffered = 0
	f.handler = nil
}
