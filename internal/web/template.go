package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/athermo/internal/automation"
	"github.com/sweeney/athermo/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateClass": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
	"rfc3339": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>ATHERMO Power</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
form { display: inline; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>ATHERMO Power</h1>

<h2>Peripherals</h2>
<table>
<tr><th>Supply</th><td class="{{stateClass (printf "%s" .Supply)}}">{{.Supply}}</td></tr>
<tr><th>Last event</th><td>{{if .LastEvent}}{{.LastEvent.Type}}{{else}}none{{end}}</td></tr>
<tr><th>Last action</th><td>{{if .LastAction}}{{.LastAction}}{{else}}none{{end}}</td></tr>
<tr><th>Last power cycle</th><td>{{rfc3339 .LastCycle}}</td></tr>
<tr><th>Queued</th><td>{{.Pending}}</td></tr>
</table>

<h2>Actions</h2>
<p>
<form method="post" action="/actions/{{.ActionOn}}"><input type="hidden" name="redirect" value="1"><button>Power on</button></form>
<form method="post" action="/actions/{{.ActionOff}}"><input type="hidden" name="redirect" value="1"><button>Power off</button></form>
<form method="post" action="/actions/{{.ActionCycle}}"><input type="hidden" name="redirect" value="1"><input type="number" name="delay_ms" min="0" value="{{.DefaultDelayMs}}" size="6">ms <button>Power cycle</button></form>
</p>
{{if .Config.Scripts}}<p>{{range .Config.Scripts}}
<form method="post" action="/scripts/{{.}}"><input type="hidden" name="redirect" value="1"><button>{{.}}</button></form>{{end}}
</p>{{end}}

<h2>Pins</h2>
<table>
<tr><th>PIR_DIS</th><td>{{.Config.PIRDisPin}}</td></tr>
<tr><th>PERIPH_VCC</th><td>{{.Config.PeriphVCCPin}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Boot state</th><td>{{.BootState}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Power on</th><td>{{.Counts.On}}</td></tr>
<tr><th>Power off</th><td>{{.Counts.Off}}</td></tr>
<tr><th>Power cycle</th><td>{{.Counts.Cycles}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>MQTT buffered</th><td>{{.MQTTBuffered}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{rfc3339 .StartTime}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime         time.Duration
		BootState      string
		ActionOn       string
		ActionOff      string
		ActionCycle    string
		DefaultDelayMs int
	}{
		Snapshot:       snap,
		Uptime:         snap.Uptime(),
		BootState:      status.BootState,
		ActionOn:       automation.ActionPowerOn,
		ActionOff:      automation.ActionPowerOff,
		ActionCycle:    automation.ActionPowerCycle,
		DefaultDelayMs: automation.DefaultDelayMs,
	}
	indexTmpl.Execute(w, data)
}
