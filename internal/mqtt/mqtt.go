// Package mqtt provides the broker client abstraction and the wire formats
// for state and discovery messages.
package mqtt

import (
	"errors"
	"strconv"

	"github.com/sweeney/room-monitor/internal/sensor"
)

var (
	// ErrNotConnected is returned by Publish when no session is open.
	ErrNotConnected = errors.New("mqtt: not connected")
	// ErrConnectTimeout is returned when the broker handshake does not finish in time.
	ErrConnectTimeout = errors.New("mqtt: connect timeout")
	// ErrPublishTimeout is returned when a publish is not acknowledged in time.
	ErrPublishTimeout = errors.New("mqtt: publish timeout")
	// ErrPayloadTooLarge is returned when a message does not fit the outgoing buffer.
	ErrPayloadTooLarge = errors.New("mqtt: packet exceeds buffer size")
)

// Client is a broker session handle. Connect is synchronous and bounded by
// the implementation's connect timeout; everything else returns promptly.
type Client interface {
	// Connect opens a new session, replacing any previous one.
	Connect(req ConnectRequest) error

	// Publish sends one message on the current session.
	// Returns error if publishing fails (should not crash the process).
	Publish(msg Message) error

	// Close disconnects from the broker.
	Close() error

	ConnectionStatus
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ConnectRequest carries the per-attempt session parameters.
// An empty Username means anonymous connect.
type ConnectRequest struct {
	ClientID string
	Username string
	Password string
}

// Message is a single outgoing publish.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// PacketSize is the encoded size of a QoS 0 PUBLISH packet carrying msg:
// fixed header (at most 5 bytes), topic length prefix, topic and payload.
func PacketSize(msg Message) int {
	return 5 + 2 + len(msg.Topic) + len(msg.Payload)
}

// Topics derives every topic the node publishes to from static config.
type Topics struct {
	StatePrefix     string // e.g. "home"
	DiscoveryPrefix string // e.g. "homeassistant"
	DeviceID        string // e.g. "room_monitor"
}

// State returns the state topic for a channel: <prefix>/<device>/<channel>.
func (t Topics) State(channel string) string {
	return t.StatePrefix + "/" + t.DeviceID + "/" + channel
}

// Discovery returns the discovery config topic for a channel.
func (t Topics) Discovery(channel string) string {
	return t.DiscoveryPrefix + "/sensor/" + t.UniqueID(channel) + "/config"
}

// UniqueID returns the hub-side unique id for a channel.
func (t Topics) UniqueID(channel string) string {
	return t.DeviceID + "_" + channel
}

// FloatDecimals is the precision used for floating-point channels.
const FloatDecimals = 1

// FormatFloat renders a floating-point channel value.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', FloatDecimals, 64)
}

// FormatPercent renders an integer percentage channel value.
func FormatPercent(v uint8) string {
	return strconv.Itoa(int(v))
}

// StateMessages returns the five retained state messages for a reading,
// in channel order.
func StateMessages(t Topics, r sensor.Reading) []Message {
	values := []struct {
		channel string
		payload string
	}{
		{sensor.ChannelTemperature, FormatFloat(r.TemperatureC)},
		{sensor.ChannelHumidity, FormatFloat(r.HumidityPct)},
		{sensor.ChannelPressure, FormatFloat(r.PressureHPa)},
		{sensor.ChannelSoil1, FormatPercent(r.Soil1Pct)},
		{sensor.ChannelSoil2, FormatPercent(r.Soil2Pct)},
	}

	msgs := make([]Message, 0, len(values))
	for _, v := range values {
		msgs = append(msgs, Message{
			Topic:    t.State(v.channel),
			Payload:  []byte(v.payload),
			Retained: true,
		})
	}
	return msgs
}
