// Package metrics exposes node state as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sweeney/room-monitor/internal/connectivity"
	"github.com/sweeney/room-monitor/internal/display"
	"github.com/sweeney/room-monitor/internal/status"
)

// Source provides the state to export. *status.Tracker implements it.
type Source interface {
	Snapshot() status.Snapshot
}

const namespace = "roommon"

// Collector reads one snapshot per scrape so every metric in a scrape
// describes the same instant.
type Collector struct {
	source Source

	linkUp          *prometheus.Desc
	sessionUp       *prometheus.Desc
	discoverySent   *prometheus.Desc
	backoff         *prometheus.Desc
	linkAttempts    *prometheus.Desc
	sessionAttempts *prometheus.Desc
	sessionFailures *prometheus.Desc
	published       *prometheus.Desc
	failed          *prometheus.Desc
	reading         *prometheus.Desc
}

// NewCollector creates a Collector over source.
func NewCollector(source Source) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		source:          source,
		linkUp:          desc("link_up", "Whether the network link is up."),
		sessionUp:       desc("session_up", "Whether the broker session is up."),
		discoverySent:   desc("discovery_sent", "Whether the current broker session has published discovery."),
		backoff:         desc("session_backoff_seconds", "Delay gating the next broker connect attempt."),
		linkAttempts:    desc("link_connect_attempts_total", "Network link connect requests issued."),
		sessionAttempts: desc("session_connect_attempts_total", "Broker connect attempts."),
		sessionFailures: desc("session_connect_failures_total", "Broker connect attempts that failed."),
		published:       desc("telemetry_published_total", "Readings published on every channel."),
		failed:          desc("telemetry_failed_total", "Readings not fully published."),
		reading:         desc("reading", "Last sensor reading per channel.", "channel"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.linkUp, c.sessionUp, c.discoverySent, c.backoff, c.linkAttempts,
		c.sessionAttempts, c.sessionFailures, c.published, c.failed, c.reading,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()
	conn := snap.Connectivity

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	counter := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	gauge(c.linkUp, boolFloat(conn.Link.Status == connectivity.StatusUp))
	gauge(c.sessionUp, boolFloat(conn.Session.Status == connectivity.StatusUp))
	gauge(c.discoverySent, boolFloat(conn.Session.DiscoverySent))
	gauge(c.backoff, conn.Session.Backoff.Seconds())

	counter(c.linkAttempts, conn.Stats.LinkAttempts)
	counter(c.sessionAttempts, conn.Stats.SessionAttempts)
	counter(c.sessionFailures, conn.Stats.SessionFailures)
	counter(c.published, conn.Stats.TelemetryPublished)
	counter(c.failed, conn.Stats.TelemetryFailed)

	if !snap.HasReading {
		return
	}
	for _, g := range display.Gauges {
		gauge(c.reading, display.Value(g.Channel, snap.Reading), g.Channel)
	}
}

// NewRegistry returns a registry holding the node collector plus the Go
// runtime and process collectors.
func NewRegistry(source Source) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCollector(source),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
