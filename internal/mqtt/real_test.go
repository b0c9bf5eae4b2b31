package mqtt

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/room-monitor/internal/config"
)

func TestRealClientOptions(t *testing.T) {
	c := NewRealClient(Options{
		Broker:         "tcp://192.168.0.137:1883",
		ConnectTimeout: 3 * time.Second,
		KeepAlive:      15 * time.Second,
	}, nil)

	opts := c.clientOptions(ConnectRequest{ClientID: "RoomMonitor-240ac401ab0f", Username: "t1-1", Password: "secret"})
	if opts.ClientID != "RoomMonitor-240ac401ab0f" {
		t.Errorf("ClientID: got %q", opts.ClientID)
	}
	if opts.Username != "t1-1" || opts.Password != "secret" {
		t.Errorf("credentials: got %q/%q", opts.Username, opts.Password)
	}
	if opts.AutoReconnect {
		t.Error("library auto-reconnect must be disabled")
	}
	if opts.ConnectRetry {
		t.Error("library connect retry must be disabled")
	}
	if len(opts.Servers) != 1 || opts.Servers[0].Host != "192.168.0.137:1883" {
		t.Errorf("Servers: got %v", opts.Servers)
	}
	if opts.ConnectTimeout != 3*time.Second {
		t.Errorf("ConnectTimeout: got %v", opts.ConnectTimeout)
	}
	if opts.KeepAlive != 15 {
		t.Errorf("KeepAlive: got %d, want 15", opts.KeepAlive)
	}
}

func TestRealClientAnonymousOptions(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://localhost:1883"}, nil)
	opts := c.clientOptions(ConnectRequest{ClientID: "x"})
	if opts.Username != "" || opts.Password != "" {
		t.Errorf("anonymous connect must not carry credentials, got %q/%q", opts.Username, opts.Password)
	}
}

func TestRealClientDefaults(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://localhost:1883"}, nil)
	if c.opts.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout default: got %v", c.opts.ConnectTimeout)
	}
	if c.opts.PublishTimeout != 2*time.Second {
		t.Errorf("PublishTimeout default: got %v", c.opts.PublishTimeout)
	}
}

func TestRealClientPublishWithoutSession(t *testing.T) {
	c := NewRealClient(Options{Broker: "tcp://localhost:1883"}, nil)
	if c.IsConnected() {
		t.Error("new client must not be connected")
	}
	if err := c.Publish(Message{Topic: "t"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("got %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close without session: %v", err)
	}
}

func TestRealClientConnectRefused(t *testing.T) {
	// Port 1 on loopback is not listening; the dial fails fast.
	c := NewRealClient(Options{Broker: "tcp://127.0.0.1:1", ConnectTimeout: 2 * time.Second}, nil)
	if err := c.Connect(ConnectRequest{ClientID: "test"}); err == nil {
		t.Fatal("expected connect error")
	}
	if c.IsConnected() {
		t.Error("must not be connected after failed connect")
	}
}

func TestRealClientLogsPacketsAtTrace(t *testing.T) {
	msg := Message{Topic: "home/room_monitor/temperature", Payload: []byte("22.5"), Retained: true}

	var buf bytes.Buffer
	c := NewRealClient(Options{Broker: "tcp://localhost:1883"}, config.NewLogger(&buf, config.LevelTrace))
	c.logSent(msg)
	out := buf.String()
	if !strings.Contains(out, "level=TRACE") || !strings.Contains(out, "topic=home/room_monitor/temperature") {
		t.Errorf("unexpected trace output: %q", out)
	}

	buf.Reset()
	c = NewRealClient(Options{Broker: "tcp://localhost:1883"}, config.NewLogger(&buf, slog.LevelDebug))
	c.logSent(msg)
	if buf.Len() != 0 {
		t.Errorf("packet log must stay below debug, got %q", buf.String())
	}
}
