package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/room-monitor/internal/connectivity"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string           `json:"state"`
	Ready         bool             `json:"ready"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	Link          LinkJSON         `json:"link"`
	Session       SessionJSON      `json:"session"`
	Reading       *ReadingJSON     `json:"reading,omitempty"`
	ReadError     string           `json:"read_error,omitempty"`
	Telemetry     TelemetryJSON    `json:"telemetry"`
	Counts        CountsJSON       `json:"counts"`
	History       []TransitionJSON `json:"history"`
	Config        ConfigJSON       `json:"config"`
}

// LinkJSON reports the network link layer.
type LinkJSON struct {
	Status        string `json:"status"`
	LastAttemptAt string `json:"last_attempt_at,omitempty"`
}

// SessionJSON reports the broker session layer.
type SessionJSON struct {
	Status         string  `json:"status"`
	Broker         string  `json:"broker"`
	ClientID       string  `json:"client_id,omitempty"`
	DiscoverySent  bool    `json:"discovery_sent"`
	BackoffSeconds float64 `json:"backoff_seconds"`
	LastAttemptAt  string  `json:"last_attempt_at,omitempty"`
}

// ReadingJSON is the last good sensor reading.
type ReadingJSON struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	PressureHPa  float64 `json:"pressure_hpa"`
	Soil1Pct     uint8   `json:"soil1_pct"`
	Soil2Pct     uint8   `json:"soil2_pct"`
	At           string  `json:"at"`
}

// TelemetryJSON reports the last publish.
type TelemetryJSON struct {
	LastPublishAt string `json:"last_publish_at,omitempty"`
	LastPublishOK bool   `json:"last_publish_ok"`
}

// CountsJSON is the JSON representation of the connectivity counters.
type CountsJSON struct {
	LinkAttempts       int `json:"link_attempts"`
	SessionAttempts    int `json:"session_attempts"`
	SessionFailures    int `json:"session_failures"`
	DiscoveryBatches   int `json:"discovery_batches"`
	DiscoveryFailures  int `json:"discovery_failures"`
	TelemetryPublished int `json:"telemetry_published"`
	TelemetryFailed    int `json:"telemetry_failed"`
	HistoryDropped     int `json:"history_dropped"`
}

// TransitionJSON is one layer status change.
type TransitionJSON struct {
	At     string `json:"at"`
	Layer  string `json:"layer"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// ConfigJSON is the JSON representation of node config.
type ConfigJSON struct {
	DeviceID          string  `json:"device_id"`
	DeviceName        string  `json:"device_name"`
	HTTPAddr          string  `json:"http_addr"`
	LoopMs            int64   `json:"loop_ms"`
	PublishMs         int64   `json:"publish_ms"`
	LinkRetryMs       int64   `json:"link_retry_ms"`
	BackoffBaseSecond float64 `json:"backoff_base_seconds"`
	BackoffMaxSecond  float64 `json:"backoff_max_seconds"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Connectivity
	inner := StatusInner{
		State:         c.State.String(),
		Ready:         snap.Ready(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     formatTime(snap.StartTime),
		Timestamp:     formatTime(snap.Now),
		Link: LinkJSON{
			Status:        c.Link.Status.String(),
			LastAttemptAt: formatTime(c.Link.LastAttemptAt),
		},
		Session: SessionJSON{
			Status:         c.Session.Status.String(),
			Broker:         snap.Config.Broker,
			ClientID:       c.Session.ClientID,
			DiscoverySent:  c.Session.DiscoverySent,
			BackoffSeconds: c.Session.Backoff.Seconds(),
			LastAttemptAt:  formatTime(c.Session.LastAttemptAt),
		},
		ReadError: snap.ReadError,
		Telemetry: TelemetryJSON{
			LastPublishAt: formatTime(snap.LastPublishAt),
			LastPublishOK: snap.LastPublishOK,
		},
		Counts: CountsJSON{
			LinkAttempts:       c.Stats.LinkAttempts,
			SessionAttempts:    c.Stats.SessionAttempts,
			SessionFailures:    c.Stats.SessionFailures,
			DiscoveryBatches:   c.Stats.DiscoveryBatches,
			DiscoveryFailures:  c.Stats.DiscoveryFailures,
			TelemetryPublished: c.Stats.TelemetryPublished,
			TelemetryFailed:    c.Stats.TelemetryFailed,
			HistoryDropped:     snap.HistoryDropped,
		},
		History: buildHistory(snap.History),
		Config: ConfigJSON{
			DeviceID:          snap.Config.DeviceID,
			DeviceName:        snap.Config.DeviceName,
			HTTPAddr:          snap.Config.HTTPAddr,
			LoopMs:            snap.Config.LoopInterval.Milliseconds(),
			PublishMs:         snap.Config.PublishInterval.Milliseconds(),
			LinkRetryMs:       snap.Config.LinkRetryDelay.Milliseconds(),
			BackoffBaseSecond: snap.Config.BackoffBase.Seconds(),
			BackoffMaxSecond:  snap.Config.BackoffMax.Seconds(),
		},
	}

	if snap.HasReading {
		r := snap.Reading
		inner.Reading = &ReadingJSON{
			TemperatureC: r.TemperatureC,
			HumidityPct:  r.HumidityPct,
			PressureHPa:  r.PressureHPa,
			Soil1Pct:     r.Soil1Pct,
			Soil2Pct:     r.Soil2Pct,
			At:           formatTime(snap.ReadingAt),
		}
	}
	return inner
}

func buildHistory(trs []connectivity.Transition) []TransitionJSON {
	out := make([]TransitionJSON, 0, len(trs))
	for _, tr := range trs {
		out = append(out, TransitionJSON{
			At:     formatTime(tr.At),
			Layer:  tr.Layer,
			From:   tr.From.String(),
			To:     tr.To.String(),
			Reason: tr.Reason,
		})
	}
	return out
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
