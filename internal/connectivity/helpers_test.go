package connectivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/room-monitor/internal/mqtt"
	"github.com/sweeney/room-monitor/internal/wifi"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Topics = mqtt.Topics{StatePrefix: "home", DiscoveryPrefix: "homeassistant", DeviceID: "room_monitor"}
	cfg.Identity = mqtt.Identity{
		ID:           "room_monitor",
		Name:         "Room Monitor",
		Model:        "Raspberry Pi Zero 2 W + BME280",
		Manufacturer: "Sweeney",
	}
	return cfg
}

type fixture struct {
	coord       *Coordinator
	link        *wifi.FakeLink
	client      *mqtt.FakeClient
	transitions []Transition
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	f := &fixture{link: wifi.NewFakeLink(), client: mqtt.NewFakeClient()}
	coord, err := New(cfg, f.link, f.client, nil)
	require.NoError(t, err)
	coord.OnTransition(func(tr Transition) { f.transitions = append(f.transitions, tr) })
	f.coord = coord
	return f
}

// ready brings both layers up at t0 and returns the fixture.
func newReadyFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	f := newFixture(t, mutate...)
	f.link.Connected = true
	require.Equal(t, Ready, f.coord.Tick(t0))
	return f
}

func discoveryTopics() []string {
	topics := make([]string, 0, len(mqtt.Channels))
	for _, ch := range mqtt.Channels {
		topics = append(topics, "homeassistant/sensor/room_monitor_"+ch.Key+"/config")
	}
	return topics
}

func (f *fixture) discoveryPublishes() int {
	n := 0
	for _, topic := range discoveryTopics() {
		n += len(f.client.PublishedTo(topic))
	}
	return n
}
