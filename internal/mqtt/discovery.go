package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/sweeney/room-monitor/internal/sensor"
)

// DeviceInfo is the device block shared by every discovery payload so the
// hub groups all channels under one device.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// SensorConfig is the retained discovery payload for one channel.
type SensorConfig struct {
	Name              string     `json:"name"`
	StateTopic        string     `json:"state_topic"`
	UnitOfMeasurement string     `json:"unit_of_measurement"`
	DeviceClass       string     `json:"device_class,omitempty"`
	StateClass        string     `json:"state_class,omitempty"`
	UniqueID          string     `json:"unique_id"`
	Device            DeviceInfo `json:"device"`
}

// Identity holds the static device identity strings.
type Identity struct {
	ID           string
	Name         string
	Model        string
	Manufacturer string
}

// NewDeviceInfo builds the shared device block.
func NewDeviceInfo(id Identity) DeviceInfo {
	return DeviceInfo{
		Identifiers:  []string{id.ID},
		Name:         id.Name,
		Model:        id.Model,
		Manufacturer: id.Manufacturer,
	}
}

// ChannelInfo is the static metadata of a measurement channel.
type ChannelInfo struct {
	Key         string
	Name        string
	Unit        string
	DeviceClass string
	StateClass  string
}

// Channels lists every published channel in publish order.
var Channels = []ChannelInfo{
	{Key: sensor.ChannelTemperature, Name: "Room Temperature", Unit: "°C", DeviceClass: "temperature", StateClass: "measurement"},
	{Key: sensor.ChannelHumidity, Name: "Room Humidity", Unit: "%", DeviceClass: "humidity", StateClass: "measurement"},
	{Key: sensor.ChannelPressure, Name: "Room Pressure", Unit: "hPa", DeviceClass: "pressure", StateClass: "measurement"},
	{Key: sensor.ChannelSoil1, Name: "Soil Moisture 1", Unit: "%", StateClass: "measurement"},
	{Key: sensor.ChannelSoil2, Name: "Soil Moisture 2", Unit: "%", StateClass: "measurement"},
}

// DiscoveryMessages builds the retained discovery descriptor for every
// channel. The result depends only on static configuration.
func DiscoveryMessages(t Topics, id Identity) ([]Message, error) {
	device := NewDeviceInfo(id)
	msgs := make([]Message, 0, len(Channels))
	for _, ch := range Channels {
		payload, err := json.Marshal(SensorConfig{
			Name:              ch.Name,
			StateTopic:        t.State(ch.Key),
			UnitOfMeasurement: ch.Unit,
			DeviceClass:       ch.DeviceClass,
			StateClass:        ch.StateClass,
			UniqueID:          t.UniqueID(ch.Key),
			Device:            device,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal %s discovery: %w", ch.Key, err)
		}
		msgs = append(msgs, Message{
			Topic:    t.Discovery(ch.Key),
			Payload:  payload,
			Retained: true,
		})
	}
	return msgs, nil
}
