package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/athermo/internal/automation"
	"github.com/sweeney/athermo/internal/power"
)

func TestFormatPayload(t *testing.T) {
	event := power.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      power.EventPowerOff,
		State:     power.StateOff,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"power":{"timestamp":"2026-02-02T22:18:12Z","event":"POWER_OFF","state":"OFF"}}`
	if string(payload) != want {
		t.Errorf("got %s\nwant %s", payload, want)
	}
}

func TestFormatPayloadCycleCarriesDelay(t *testing.T) {
	event := power.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      power.EventPowerCycle,
		State:     power.StateOn,
		Delay:     0,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Power.DelayMs == nil || *parsed.Power.DelayMs != 0 {
		t.Errorf("delay_ms: got %v, want 0", parsed.Power.DelayMs)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := power.Event{
		Timestamp: time.Date(2026, 6, 1, 12, 0, 0, 0, loc),
		Type:      power.EventPowerOn,
		State:     power.StateOn,
	}

	payload, _ := FormatPayload(event)
	var parsed Payload
	json.Unmarshal(payload, &parsed)

	if parsed.Power.Timestamp != "2026-06-01T10:00:00Z" {
		t.Errorf("timestamp: got %s", parsed.Power.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != want {
		t.Errorf("got %s\nwant %s", payload, want)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("got %s, want raw payload", payload)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		payload string
		want    automation.Command
	}{
		{`{"action":"athermo.periph_vcc_on"}`, automation.Command{Action: automation.ActionPowerOn}},
		{`{"script":"recover_display"}`, automation.Command{Script: "recover_display"}},
		{`{"action":"athermo.power_cycle","delay_ms":250,"extra":true}`, automation.Command{Action: automation.ActionPowerCycle}},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Action != tt.want.Action || got.Script != tt.want.Script {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseCommandDelay(t *testing.T) {
	got, err := ParseCommand([]byte(`{"action":"athermo.power_cycle","delay_ms":250}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DelayMs == nil || *got.DelayMs != 250 {
		t.Errorf("DelayMs: got %v", got.DelayMs)
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, payload := range []string{`not json`, `{}`, `[]`} {
		t.Run(payload, func(t *testing.T) {
			if _, err := ParseCommand([]byte(payload)); !errors.Is(err, automation.ErrInvalidCommand) {
				t.Errorf("got %v, want ErrInvalidCommand", err)
			}
		})
	}
}

func TestFakeClientPublish(t *testing.T) {
	f := NewFakeClient()
	event := power.Event{Type: power.EventPowerOn, State: power.StateOn}

	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Events) != 1 || len(f.Payloads) != 1 {
		t.Fatalf("expected 1 event and payload, got %d/%d", len(f.Events), len(f.Payloads))
	}
	if f.Events[0].Type != power.EventPowerOn {
		t.Errorf("event type: got %s", f.Events[0].Type)
	}
}

func TestFakeClientPublishError(t *testing.T) {
	f := NewFakeClient()
	f.PublishError = errors.New("broker down")

	if err := f.Publish(power.Event{}); err == nil {
		t.Error("expected error")
	}
	if len(f.Events) != 0 {
		t.Errorf("expected nothing recorded, got %d", len(f.Events))
	}
}

func TestFakeClientPublishSystem(t *testing.T) {
	f := NewFakeClient()
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SystemEvents) != 1 || !f.SystemEvents[0].Retained {
		t.Errorf("system events: got %+v", f.SystemEvents)
	}
}

func TestFakeClientDeliver(t *testing.T) {
	f := NewFakeClient()

	if f.Deliver([]byte(`{"action":"athermo.periph_vcc_off"}`)) {
		t.Error("Deliver without subscription should return false")
	}

	var got []automation.Command
	if err := f.SubscribeCommands(func(cmd automation.Command) { got = append(got, cmd) }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if !f.Deliver([]byte(`{"action":"athermo.periph_vcc_off"}`)) {
		t.Error("expected delivery")
	}
	if f.Deliver([]byte(`garbage`)) {
		t.Error("garbage should not be delivered")
	}
	if !f.DeliverCommand(automation.Command{Script: "x"}) {
		t.Error("expected DeliverCommand to deliver")
	}

	if len(got) != 2 || got[0].Action != automation.ActionPowerOff || got[1].Script != "x" {
		t.Errorf("delivered: got %+v", got)
	}
}

func TestFakeClientReset(t *testing.T) {
	f := NewFakeClient()
	f.Publish(power.Event{})
	f.PublishSystem(SystemEvent{})
	f.SubscribeCommands(func(automation.Command) {})
	f.Connected = true
	f.Close()

	f.Reset()

	if len(f.Events) != 0 || len(f.SystemEvents) != 0 || f.Closed || f.Connected {
		t.Errorf("not reset: %+v", f)
	}
	if f.Deliver([]byte(`{"action":"x"}`)) {
		t.Error("handler should be cleared by Reset")
	}
}

func TestTopics(t *testing.T) {
	if TopicEvents != "athermo/power/events" {
		t.Errorf("TopicEvents: got %q", TopicEvents)
	}
	if TopicSystem != "athermo/power/system" {
		t.Errorf("TopicSystem: got %q", TopicSystem)
	}
	if TopicCommand != "athermo/power/command" {
		t.Errorf("TopicCommand: got %q", TopicCommand)
	}
}
