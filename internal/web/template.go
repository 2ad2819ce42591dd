package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/JeffRocchio/TemperatureController/internal/status"
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
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"degF": func(v float64) string {
		return fmt.Sprintf("%.1f °F", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Temperature Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Temperature Controller</h1>

<h2>State</h2>
<table>
<tr><th>Heater</th><td class="{{if eq (orUnknown .HeaterState) "ON"}}on{{else if eq (orUnknown .HeaterState) "OFF"}}off{{else}}unknown{{end}}">{{orUnknown .HeaterState}}</td></tr>
<tr><th>Region</th><td>{{orUnknown .Region}}</td></tr>
<tr><th>Temperature</th><td>{{degF .TempF}}</td></tr>
<tr><th>Setpoint</th><td>{{degF .SetpointF}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Transition Counts</h2>
<table>
<tr><th>Heater ON</th><td>{{.Counts.HeaterOn}}</td></tr>
<tr><th>Heater OFF</th><td>{{.Counts.HeaterOff}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime}}</td></tr>
<tr><th>Sample / Control / Display</th><td>{{.Config.SampleMs}} / {{.Config.ControlMs}} / {{.Config.DisplayMs}} ms</td></tr>
<tr><th>Hysteresis</th><td>{{printf "%.1f" .Config.HysteresisF}} °F</td></tr>
<tr><th>Setpoint range</th><td>{{printf "%.0f" .Config.MinSetF}}–{{printf "%.0f" .Config.MaxSetF}} °F</td></tr>
</table>
</body>
</html>
`

// templateData flattens a snapshot for the template.
type templateData struct {
	HeaterState   string
	Region        string
	TempF         float64
	SetpointF     float64
	Counts        status.Counts
	MQTTConnected bool
	Uptime        time.Duration
	StartTime     string
	Config        status.Config
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := templateData{
		HeaterState:   string(snap.Heater),
		Region:        snap.Region,
		TempF:         snap.TempF,
		SetpointF:     snap.SetpointF,
		Counts:        snap.Counts,
		MQTTConnected: snap.MQTTConnected,
		Uptime:        snap.Uptime(),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Config:        snap.Config,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Warnf("render status page: %v", err)
	}
}
