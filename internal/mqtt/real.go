package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/room-monitor/internal/config"
)

// Options configures the paho-backed client.
type Options struct {
	Broker         string // e.g. tcp://192.168.0.137:1883
	QoS            byte
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	KeepAlive      time.Duration
}

// RealClient publishes to an actual MQTT broker.
// Library-side reconnection is disabled: the caller decides when to reconnect.
type RealClient struct {
	opts   Options
	client paho.Client
	logger *slog.Logger
}

// NewRealClient creates a client for the given broker. It does not connect.
func NewRealClient(opts Options, logger *slog.Logger) *RealClient {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 2 * time.Second
	}
	return &RealClient{opts: opts, logger: logger}
}

func (c *RealClient) clientOptions(req ConnectRequest) *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(c.opts.Broker).
		SetClientID(req.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(c.opts.ConnectTimeout).
		SetWriteTimeout(c.opts.PublishTimeout).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.logger.Warn("mqtt connection lost", "broker", c.opts.Broker, "error", err)
		})
	if c.opts.KeepAlive > 0 {
		opts.SetKeepAlive(c.opts.KeepAlive)
	}
	if req.Username != "" {
		opts.SetUsername(req.Username).SetPassword(req.Password)
	}
	return opts
}

// Connect performs a synchronous broker handshake with a fresh client.
func (c *RealClient) Connect(req ConnectRequest) error {
	if c.client != nil {
		c.client.Disconnect(0)
		c.client = nil
	}

	client := paho.NewClient(c.clientOptions(req))
	token := client.Connect()
	if !token.WaitTimeout(c.opts.ConnectTimeout) {
		client.Disconnect(0)
		return ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}

	c.client = client
	return nil
}

// IsConnected reports whether the current session's network connection is open.
func (c *RealClient) IsConnected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

// Publish sends one message and waits for the library to hand it off.
func (c *RealClient) Publish(msg Message) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(msg.Topic, c.opts.QoS, msg.Retained, msg.Payload)
	if !token.WaitTimeout(c.opts.PublishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Topic, err)
	}
	c.logSent(msg)
	return nil
}

func (c *RealClient) logSent(msg Message) {
	c.logger.Log(context.Background(), config.LevelTrace, "mqtt packet sent",
		"topic", msg.Topic, "retained", msg.Retained, "payload", string(msg.Payload))
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	if c.client != nil {
		c.client.Disconnect(250)
		c.client = nil
	}
	return nil
}
