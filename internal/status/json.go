package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Peripherals   string       `json:"peripherals"`
	LastEvent     string       `json:"last_event,omitempty"`
	LastAction    string       `json:"last_action,omitempty"`
	LastCycle     string       `json:"last_cycle,omitempty"`
	Pending       int          `json:"pending"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Buffered  int    `json:"buffered"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	On     int `json:"power_on"`
	Off    int `json:"power_off"`
	Cycles int `json:"power_cycle"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend      string   `json:"gpio_backend"`
	PIRDisPin    string   `json:"pir_dis_pin"`
	PeriphVCCPin string   `json:"periph_vcc_pin"`
	BootState    string   `json:"boot_state"`
	Broker       string   `json:"broker"`
	HTTPAddr     string   `json:"http_addr"`
	Scripts      []string `json:"scripts"`
}

// BootState describes the levels driven at boot.
const BootState = "PIR_DIS=HIGH, PERIPH_VCC=LOW (power ON)"

func buildInner(snap Snapshot) StatusInner {
	supply := string(snap.Supply)
	if supply == "" {
		supply = "UNKNOWN"
	}
	scripts := snap.Config.Scripts
	if scripts == nil {
		scripts = []string{}
	}

	inner := StatusInner{
		Peripherals:   supply,
		LastAction:    snap.LastAction,
		Pending:       snap.Pending,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Buffered: snap.MQTTBuffered, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			On:     snap.Counts.On,
			Off:    snap.Counts.Off,
			Cycles: snap.Counts.Cycles,
		},
		Config: ConfigJSON{
			Backend:      snap.Config.Backend,
			PIRDisPin:    snap.Config.PIRDisPin,
			PeriphVCCPin: snap.Config.PeriphVCCPin,
			BootState:    BootState,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			Scripts:      scripts,
		},
	}
	if snap.LastEvent != nil {
		inner.LastEvent = string(snap.LastEvent.Type)
	}
	if !snap.LastCycle.IsZero() {
		inner.LastCycle = snap.LastCycle.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
