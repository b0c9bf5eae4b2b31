package web

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/room-monitor/internal/display"
	"github.com/sweeney/room-monitor/internal/status"
)

// Dial geometry in SVG user units.
const (
	dialSize   = 160.0
	dialCenter = dialSize / 2
	dialRadius = dialCenter - 6
	tickInner  = dialRadius - 10
	tickOuter  = dialRadius - 2
	needleLen  = dialRadius - 22
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
	"px": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 1, 64)
	},
	"statusClass": func(s string) string {
		return strings.ToLower(s)
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>{{.Config.DeviceName}}</title>
<style>
body { font-family: monospace; max-width: 900px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.gauges { display: flex; flex-wrap: wrap; gap: 1em; }
.gauge { text-align: center; }
.gauge svg { width: 160px; height: 160px; }
.ring { fill: none; stroke: #0aa; stroke-width: 2; }
.tick { stroke: #888; stroke-width: 2; }
.needle { stroke: #c00; stroke-width: 3; stroke-linecap: round; }
.value { font-size: 18px; text-anchor: middle; }
.range { font-size: 10px; fill: #888; }
.up { color: green; }
.connecting { color: orange; }
.down { color: red; }
.stale { color: orange; }
</style>
</head>
<body>
<h1>{{.Config.DeviceName}}</h1>

<h2>Readings</h2>
{{if .HasReading}}
<div class="gauges">
{{range .Gauges}}
<div class="gauge">
<svg viewBox="0 0 160 160">
<circle class="ring" cx="80" cy="80" r="{{px $.Radius}}"/>
{{range .Ticks}}<line class="tick" x1="{{px .From.X}}" y1="{{px .From.Y}}" x2="{{px .To.X}}" y2="{{px .To.Y}}"/>
{{end}}<line class="needle" x1="80" y1="80" x2="{{px .Tip.X}}" y2="{{px .Tip.Y}}"/>
<text class="value" x="80" y="120">{{.Value}}{{.Unit}}</text>
<text class="range" x="30" y="150">{{.Min}}</text>
<text class="range" x="115" y="150">{{.Max}}</text>
</svg>
<div>{{.Label}}</div>
</div>
{{end}}
</div>
<p>Sampled {{stamp .ReadingAt}}{{if .ReadError}} <span class="stale">(last read failed: {{.ReadError}})</span>{{end}}</p>
{{else}}
<p class="stale">No reading yet{{if .ReadError}}: {{.ReadError}}{{end}}</p>
{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>State</th><td>{{.Connectivity.State}}</td></tr>
<tr><th>Link</th><td class="{{statusClass .Connectivity.Link.Status.String}}">{{.Connectivity.Link.Status}}</td></tr>
<tr><th>Session</th><td class="{{statusClass .Connectivity.Session.Status.String}}">{{.Connectivity.Session.Status}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Client ID</th><td>{{.Connectivity.Session.ClientID}}</td></tr>
<tr><th>Discovery sent</th><td>{{if .Connectivity.Session.DiscoverySent}}yes{{else}}no{{end}}</td></tr>
<tr><th>Backoff</th><td>{{.Connectivity.Session.Backoff}}</td></tr>
<tr><th>Last publish</th><td>{{stamp .LastPublishAt}}{{if not .LastPublishAt.IsZero}} ({{if .LastPublishOK}}ok{{else}}failed{{end}}){{end}}</td></tr>
</table>

<h2>Counters</h2>
<table>
<tr><th>Link attempts</th><td>{{.Connectivity.Stats.LinkAttempts}}</td></tr>
<tr><th>Session attempts</th><td>{{.Connectivity.Stats.SessionAttempts}}</td></tr>
<tr><th>Session failures</th><td>{{.Connectivity.Stats.SessionFailures}}</td></tr>
<tr><th>Discovery batches</th><td>{{.Connectivity.Stats.DiscoveryBatches}}</td></tr>
<tr><th>Telemetry published</th><td>{{.Connectivity.Stats.TelemetryPublished}}</td></tr>
<tr><th>Telemetry failed</th><td>{{.Connectivity.Stats.TelemetryFailed}}</td></tr>
</table>

{{if .History}}
<h2>Recent transitions</h2>
<table>
{{range .History}}<tr><td>{{stamp .At}}</td><td>{{.Layer}}</td><td>{{.From}} &rarr; {{.To}}</td><td>{{.Reason}}</td></tr>
{{end}}</table>
{{end}}

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{stamp .StartTime}}</td></tr>
<tr><th>Device ID</th><td>{{.Config.DeviceID}}</td></tr>
<tr><th>Publish interval</th><td>{{.Config.PublishInterval}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/metrics">metrics</a></p>
</body>
</html>
`

// gaugeView is one dial, pre-computed for the template.
type gaugeView struct {
	Label string
	Unit  string
	Value string
	Min   float64
	Max   float64
	Tip   display.Point
	Ticks []display.Tick
}

func buildGauges(snap status.Snapshot) []gaugeView {
	ticks := display.Ticks(dialCenter, dialCenter, tickInner, tickOuter)
	views := make([]gaugeView, 0, len(display.Gauges))
	for _, g := range display.Gauges {
		v := display.Value(g.Channel, snap.Reading)
		views = append(views, gaugeView{
			Label: g.Label,
			Unit:  g.Unit,
			Value: strconv.FormatFloat(v, 'f', -1, 64),
			Min:   g.Min,
			Max:   g.Max,
			Tip:   g.Needle(v, dialCenter, dialCenter, needleLen),
			Ticks: ticks,
		})
	}
	return views
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Gauges []gaugeView
		Radius float64
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Gauges:   buildGauges(snap),
		Radius:   dialRadius,
	}
	indexTmpl.Execute(w, data)
}
