// Package config loads the node configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the locations searched when no explicit
// config path is given, in order.
func DefaultSearchPaths() []string {
	return []string{"room-monitor.yaml", "/etc/room-monitor/config.yaml"}
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise the first existing entry of DefaultSearchPaths is returned, or
// "" if none exists and the built-in defaults should be used.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Config holds all node configuration. It is read-only after startup.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Link    LinkConfig    `yaml:"link"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Sensors SensorsConfig `yaml:"sensors"`
	HTTP    HTTPConfig    `yaml:"http"`
	LED     LEDConfig     `yaml:"led"`

	LoopInterval    time.Duration `yaml:"loop_interval"`
	PublishInterval time.Duration `yaml:"publish_interval"`
	HistorySize     int           `yaml:"history_size"`
	LogLevel        string        `yaml:"log_level"`
}

// DeviceConfig identifies the node to the home-automation hub.
type DeviceConfig struct {
	ID           string `yaml:"id"` // topic segment and unique_id prefix
	Name         string `yaml:"name"`
	Model        string `yaml:"model"`
	Manufacturer string `yaml:"manufacturer"`
}

// LinkConfig controls the network link layer.
type LinkConfig struct {
	Interface   string        `yaml:"interface"`
	SSID        string        `yaml:"ssid"`
	Password    string        `yaml:"password"`
	Command     []string      `yaml:"command"` // overrides the reconnect method
	RetryDelay  time.Duration `yaml:"retry_delay"`
	JoinTimeout time.Duration `yaml:"join_timeout"`
}

// MQTTConfig controls the broker session.
type MQTTConfig struct {
	Broker          string        `yaml:"broker"`
	Username        string        `yaml:"username"` // empty means anonymous
	Password        string        `yaml:"password"`
	ClientIDPrefix  string        `yaml:"client_id_prefix"`
	QoS             byte          `yaml:"qos"`
	KeepAlive       time.Duration `yaml:"keepalive"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	PublishTimeout  time.Duration `yaml:"publish_timeout"`
	BackoffBase     time.Duration `yaml:"backoff_base"`
	BackoffMax      time.Duration `yaml:"backoff_max"`
	BufferSize      int           `yaml:"buffer_size"`
	StatePrefix     string        `yaml:"state_prefix"`
	DiscoveryPrefix string        `yaml:"discovery_prefix"`
}

// SensorsConfig locates the IIO devices.
type SensorsConfig struct {
	EnvDevice    string `yaml:"env_device"`
	ADCDevice    string `yaml:"adc_device"`
	Soil1Channel int    `yaml:"soil1_channel"`
	Soil2Channel int    `yaml:"soil2_channel"`
	SoilADCMin   int    `yaml:"soil_adc_min"`
	SoilADCMax   int    `yaml:"soil_adc_max"`
}

// HTTPConfig controls the status server.
type HTTPConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address"`
	Advertise bool   `yaml:"advertise"` // mDNS
}

// LEDConfig selects the connectivity LED line.
type LEDConfig struct {
	Enabled bool   `yaml:"enabled"`
	Chip    string `yaml:"chip"`
	Line    int    `yaml:"line"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:           "room_monitor",
			Name:         "Room Monitor",
			Model:        "Raspberry Pi Zero 2 W + BME280",
			Manufacturer: "Sweeney",
		},
		Link: LinkConfig{
			Interface:   "wlan0",
			RetryDelay:  500 * time.Millisecond,
			JoinTimeout: 30 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:          "tcp://localhost:1883",
			ClientIDPrefix:  "RoomMonitor-",
			KeepAlive:       30 * time.Second,
			ConnectTimeout:  5 * time.Second,
			PublishTimeout:  2 * time.Second,
			BackoffBase:     5 * time.Second,
			BackoffMax:      60 * time.Second,
			BufferSize:      1024,
			StatePrefix:     "home",
			DiscoveryPrefix: "homeassistant",
		},
		Sensors: SensorsConfig{
			EnvDevice:    "/sys/bus/iio/devices/iio:device0",
			ADCDevice:    "/sys/bus/iio/devices/iio:device1",
			Soil1Channel: 0,
			Soil2Channel: 1,
			SoilADCMin:   0,
			SoilADCMax:   1023,
		},
		HTTP: HTTPConfig{
			Enabled:   true,
			Address:   ":8080",
			Advertise: true,
		},
		LED: LEDConfig{
			Chip: "gpiochip0",
			Line: 17,
		},
		LoopInterval:    time.Second,
		PublishInterval: 10 * time.Second,
		HistorySize:     32,
		LogLevel:        "info",
	}
}

// Load reads configuration from a YAML file over the defaults.
// Environment variables are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the node cannot run with.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Device.ID == "" {
		add("device.id is required")
	}
	if u, err := url.Parse(c.MQTT.Broker); err != nil || u.Host == "" {
		add("mqtt.broker %q is not a broker URL", c.MQTT.Broker)
	} else if u.Scheme != "tcp" && u.Scheme != "mqtt" && u.Scheme != "ws" {
		add("mqtt.broker scheme %q not supported (tcp, mqtt, ws)", u.Scheme)
	}
	if c.MQTT.QoS > 2 {
		add("mqtt.qos must be 0, 1 or 2")
	}
	if c.MQTT.BackoffBase <= 0 {
		add("mqtt.backoff_base must be positive")
	}
	if c.MQTT.BackoffMax < c.MQTT.BackoffBase {
		add("mqtt.backoff_max (%s) must not be below backoff_base (%s)", c.MQTT.BackoffMax, c.MQTT.BackoffBase)
	}
	if c.MQTT.BufferSize < 128 {
		add("mqtt.buffer_size must be at least 128 bytes")
	}
	if c.MQTT.ConnectTimeout <= 0 || c.MQTT.PublishTimeout <= 0 {
		add("mqtt timeouts must be positive")
	}
	if c.Link.RetryDelay <= 0 {
		add("link.retry_delay must be positive")
	}
	if c.Link.JoinTimeout <= 0 {
		add("link.join_timeout must be positive")
	}
	if c.LoopInterval <= 0 {
		add("loop_interval must be positive")
	}
	if c.PublishInterval <= 0 {
		add("publish_interval must be positive")
	}
	if c.HistorySize <= 0 {
		add("history_size must be positive")
	}
	if c.Sensors.Soil1Channel < 0 || c.Sensors.Soil2Channel < 0 {
		add("sensors soil channels must be non-negative")
	}
	if c.Sensors.SoilADCMax <= c.Sensors.SoilADCMin {
		add("sensors.soil_adc_max must be above soil_adc_min")
	}
	if c.LED.Enabled && c.LED.Line < 0 {
		add("led.line must be non-negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
