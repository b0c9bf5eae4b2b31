package connectivity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/room-monitor/internal/sensor"
)

func TestDiscoveryPublishedOncePerSession(t *testing.T) {
	f := newReadyFixture(t)

	assert.Equal(t, 5, f.discoveryPublishes())
	for _, m := range f.client.Published {
		assert.True(t, m.Retained, m.Topic)
	}
	assert.True(t, f.coord.Session().DiscoverySent())

	for i := 1; i <= 5; i++ {
		require.Equal(t, Ready, f.coord.Tick(t0.Add(time.Duration(i)*time.Second)))
	}
	assert.Equal(t, 5, f.discoveryPublishes(), "no republish within the same session")
}

func TestDiscoveryPartialFailureRedoesWholeBatch(t *testing.T) {
	f := newFixture(t)
	f.link.Connected = true
	f.client.PublishErrors["homeassistant/sensor/room_monitor_humidity/config"] = errors.New("queue full")

	require.Equal(t, Ready, f.coord.Tick(t0))
	assert.Equal(t, 4, f.discoveryPublishes())
	assert.Equal(t, 5, f.client.PublishAttempts, "every message is attempted")
	assert.False(t, f.coord.Session().DiscoverySent())

	delete(f.client.PublishErrors, "homeassistant/sensor/room_monitor_humidity/config")
	require.Equal(t, Ready, f.coord.Tick(t0.Add(time.Second)))
	assert.Equal(t, 9, f.discoveryPublishes(), "entire batch redone")
	assert.True(t, f.coord.Session().DiscoverySent())

	stats := f.coord.Snapshot().Stats
	assert.Equal(t, 2, stats.DiscoveryBatches)
	assert.Equal(t, 1, stats.DiscoveryFailures)
}

func TestDiscoveryRepublishedForNewSession(t *testing.T) {
	f := newReadyFixture(t)
	require.Equal(t, 5, f.discoveryPublishes())

	f.client.Drop()
	assert.Equal(t, NotReady, f.coord.Tick(t0.Add(time.Second)))
	assert.Equal(t, Ready, f.coord.Tick(t0.Add(6*time.Second)))
	assert.Equal(t, 10, f.discoveryPublishes())
}

func TestDiscoveryRejectedByBufferSize(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.BufferSize = 128 })
	f.link.Connected = true

	require.Equal(t, Ready, f.coord.Tick(t0))
	assert.Equal(t, 0, f.client.PublishAttempts, "oversized packets never reach the client")
	assert.False(t, f.coord.Session().DiscoverySent())
}

func TestDiscoveryNoopWhenSessionDown(t *testing.T) {
	f := newFixture(t)
	out := f.coord.discovery.PublishIfNeeded(f.coord.Session())
	assert.False(t, out.AllOK)
	assert.Equal(t, 0, out.Attempted)
	assert.Equal(t, 0, f.client.PublishAttempts)
}

func TestPublishReadingSessionDown(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.coord.PublishReading(sensor.Reading{TemperatureC: 20}))
	assert.Equal(t, 0, f.client.PublishAttempts)
}

func TestPublishReadingEndToEnd(t *testing.T) {
	f := newReadyFixture(t)
	require.True(t, f.coord.Session().DiscoverySent())
	before := len(f.client.Published)
	attempts := f.client.PublishAttempts

	r := sensor.Reading{TemperatureC: 22.5, HumidityPct: 48.0, PressureHPa: 1013.2, Soil1Pct: 35, Soil2Pct: 60}
	require.Equal(t, Ready, f.coord.Tick(t0.Add(10*time.Second)))
	require.True(t, f.coord.PublishReading(r))

	assert.Equal(t, 5, f.client.PublishAttempts-attempts)
	got := f.client.Published[before:]
	want := []struct{ topic, payload string }{
		{"home/room_monitor/temperature", "22.5"},
		{"home/room_monitor/humidity", "48.0"},
		{"home/room_monitor/pressure", "1013.2"},
		{"home/room_monitor/soil1", "35"},
		{"home/room_monitor/soil2", "60"},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.topic, got[i].Topic)
		assert.Equal(t, w.payload, string(got[i].Payload))
		assert.True(t, got[i].Retained)
	}
	assert.Equal(t, 5, f.discoveryPublishes(), "no discovery publishes for an announced session")
}

func TestPublishReadingPartialFailure(t *testing.T) {
	f := newReadyFixture(t)
	f.client.PublishErrors["home/room_monitor/pressure"] = errors.New("timeout")
	before := len(f.client.Published)

	assert.False(t, f.coord.PublishReading(sensor.Reading{PressureHPa: 1000}))
	assert.Len(t, f.client.Published[before:], 4)

	stats := f.coord.Snapshot().Stats
	assert.Equal(t, 0, stats.TelemetryPublished)
	assert.Equal(t, 1, stats.TelemetryFailed)
}

func TestPublishOutcomeErr(t *testing.T) {
	assert.NoError(t, PublishOutcome{AllOK: true}.Err())
	assert.ErrorIs(t, PublishOutcome{}.Err(), ErrPublishFailed)

	err := PublishOutcome{Attempted: 5, Failed: []string{"a"}}.Err()
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.Contains(t, err.Error(), "1 of 5")
}
