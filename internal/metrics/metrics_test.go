package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sweeney/room-monitor/internal/connectivity"
	"github.com/sweeney/room-monitor/internal/sensor"
	"github.com/sweeney/room-monitor/internal/status"
)

type staticSource status.Snapshot

func (s staticSource) Snapshot() status.Snapshot {
	return status.Snapshot(s)
}

func readySnapshot() status.Snapshot {
	return status.Snapshot{
		Reading:    sensor.Reading{TemperatureC: 22.5, HumidityPct: 48, PressureHPa: 1013.2, Soil1Pct: 35, Soil2Pct: 60},
		HasReading: true,
		Connectivity: connectivity.Snapshot{
			State: connectivity.StateReady,
			Link:  connectivity.LinkSnapshot{Status: connectivity.StatusUp},
			Session: connectivity.SessionSnapshot{
				Status:        connectivity.StatusUp,
				Backoff:       5 * time.Second,
				DiscoverySent: true,
			},
			Stats: connectivity.Stats{
				LinkAttempts:       2,
				SessionAttempts:    4,
				SessionFailures:    3,
				TelemetryPublished: 17,
				TelemetryFailed:    1,
			},
		},
	}
}

func TestCollectorReady(t *testing.T) {
	c := NewCollector(staticSource(readySnapshot()))

	expected := `
# HELP roommon_link_up Whether the network link is up.
# TYPE roommon_link_up gauge
roommon_link_up 1
# HELP roommon_session_up Whether the broker session is up.
# TYPE roommon_session_up gauge
roommon_session_up 1
# HELP roommon_discovery_sent Whether the current broker session has published discovery.
# TYPE roommon_discovery_sent gauge
roommon_discovery_sent 1
# HELP roommon_session_backoff_seconds Delay gating the next broker connect attempt.
# TYPE roommon_session_backoff_seconds gauge
roommon_session_backoff_seconds 5
# HELP roommon_session_connect_attempts_total Broker connect attempts.
# TYPE roommon_session_connect_attempts_total counter
roommon_session_connect_attempts_total 4
# HELP roommon_session_connect_failures_total Broker connect attempts that failed.
# TYPE roommon_session_connect_failures_total counter
roommon_session_connect_failures_total 3
# HELP roommon_telemetry_published_total Readings published on every channel.
# TYPE roommon_telemetry_published_total counter
roommon_telemetry_published_total 17
# HELP roommon_reading Last sensor reading per channel.
# TYPE roommon_reading gauge
roommon_reading{channel="humidity"} 48
roommon_reading{channel="pressure"} 1013.2
roommon_reading{channel="soil1"} 35
roommon_reading{channel="soil2"} 60
roommon_reading{channel="temperature"} 22.5
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"roommon_link_up",
		"roommon_session_up",
		"roommon_discovery_sent",
		"roommon_session_backoff_seconds",
		"roommon_session_connect_attempts_total",
		"roommon_session_connect_failures_total",
		"roommon_telemetry_published_total",
		"roommon_reading",
	)
	if err != nil {
		t.Fatal(err)
	}
}

func TestCollectorDisconnectedWithoutReading(t *testing.T) {
	snap := status.Snapshot{
		Connectivity: connectivity.Snapshot{
			Session: connectivity.SessionSnapshot{Backoff: 40 * time.Second},
		},
	}
	c := NewCollector(staticSource(snap))

	if n := testutil.CollectAndCount(c, "roommon_reading"); n != 0 {
		t.Errorf("expected no reading series before the first sample, got %d", n)
	}

	expected := `
# HELP roommon_session_up Whether the broker session is up.
# TYPE roommon_session_up gauge
roommon_session_up 0
# HELP roommon_session_backoff_seconds Delay gating the next broker connect attempt.
# TYPE roommon_session_backoff_seconds gauge
roommon_session_backoff_seconds 40
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"roommon_session_up", "roommon_session_backoff_seconds"); err != nil {
		t.Fatal(err)
	}
}

func TestCollectorCount(t *testing.T) {
	c := NewCollector(staticSource(readySnapshot()))
	// 9 scalar series plus 5 channels.
	if n := testutil.CollectAndCount(c); n != 14 {
		t.Errorf("expected 14 series, got %d", n)
	}
}

func TestCollectorLint(t *testing.T) {
	problems, err := testutil.CollectAndLint(NewCollector(staticSource(readySnapshot())))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range problems {
		t.Errorf("lint %s: %s", p.Metric, p.Text)
	}
}

func TestRegistryGathers(t *testing.T) {
	tracker := status.NewTracker(time.Now(), status.Config{}, 4)
	reg := NewRegistry(tracker)

	n, err := testutil.GatherAndCount(reg, "roommon_link_up", "go_goroutines")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 series, got %d", n)
	}
}
