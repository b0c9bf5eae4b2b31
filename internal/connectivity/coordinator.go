package connectivity

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sweeney/room-monitor/internal/mqtt"
	"github.com/sweeney/room-monitor/internal/sensor"
	"github.com/sweeney/room-monitor/internal/wifi"
)

// Config holds the static connectivity parameters.
type Config struct {
	LinkRetryDelay time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	ClientIDPrefix string
	Credentials    Credentials
	BufferSize     int
	Topics         mqtt.Topics
	Identity       mqtt.Identity
}

// DefaultConfig returns the firmware timings: 500ms link retry, 5s..60s
// session backoff, 1 KiB outgoing buffer.
func DefaultConfig() Config {
	return Config{
		LinkRetryDelay: 500 * time.Millisecond,
		BackoffBase:    5 * time.Second,
		BackoffMax:     60 * time.Second,
		ClientIDPrefix: "RoomMonitor-",
		BufferSize:     1024,
	}
}

// Coordinator owns both connectivity layers and the broker client, and
// exposes the single per-tick entry point used by the main loop.
// Not safe for concurrent use; share state with other goroutines through
// Snapshot.
type Coordinator struct {
	link      *LinkState
	session   *SessionState
	discovery *DiscoveryPublisher
	telemetry *TelemetryPublisher
	notify    *notifier
	stats     *Stats
	logger    *slog.Logger
}

// New creates a coordinator with both layers Down.
func New(cfg Config, link wifi.Link, client mqtt.Client, logger *slog.Logger) (*Coordinator, error) {
	if link == nil || client == nil {
		return nil, errors.New("connectivity: link and client are required")
	}
	if cfg.LinkRetryDelay <= 0 || cfg.BackoffBase <= 0 {
		return nil, errors.New("connectivity: retry delay and backoff base must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	n := &notifier{}
	stats := &Stats{}
	linkLog := logger.With("layer", LayerLink)
	sessLog := logger.With("layer", LayerSession)

	ls := newLinkState(link, cfg.LinkRetryDelay, linkLog, n, stats)
	ss := &SessionState{
		link:           ls,
		client:         client,
		creds:          cfg.Credentials,
		clientIDPrefix: cfg.ClientIDPrefix,
		bufferSize:     cfg.BufferSize,
		logger:         sessLog,
		notify:         n,
		stats:          stats,
		backoff:        NewBackoff(cfg.BackoffBase, cfg.BackoffMax),
	}

	disc, err := NewDiscoveryPublisher(cfg.Topics, cfg.Identity, sessLog, stats)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		link:      ls,
		session:   ss,
		discovery: disc,
		telemetry: NewTelemetryPublisher(cfg.Topics, sessLog, stats),
		notify:    n,
		stats:     stats,
		logger:    logger,
	}, nil
}

// OnTransition registers the observer for layer status changes.
func (c *Coordinator) OnTransition(fn TransitionFunc) {
	c.notify.fn = fn
}

// Tick advances both state machines and, once the session is up,
// announces discovery if this session has not yet done so. NotReady means
// the caller must skip telemetry this tick.
func (c *Coordinator) Tick(now time.Time) Readiness {
	if !c.session.Ensure(now) {
		return NotReady
	}
	c.discovery.PublishIfNeeded(c.session)
	return Ready
}

// PublishReading publishes one reading to the state topics. Returns true
// only if all channels were accepted.
func (c *Coordinator) PublishReading(r sensor.Reading) bool {
	return c.telemetry.Publish(c.session, r).AllOK
}

// State derives the coordinator state from the two layers.
func (c *Coordinator) State() State {
	switch {
	case c.session.Status() == StatusUp:
		return StateReady
	case c.link.Status() == StatusUp:
		return StateLinkOnly
	default:
		return StateDisconnected
	}
}

// Link exposes the link layer for inspection.
func (c *Coordinator) Link() *LinkState {
	return c.link
}

// Session exposes the session layer for inspection.
func (c *Coordinator) Session() *SessionState {
	return c.session
}

// Snapshot returns a value copy of the full connectivity state.
func (c *Coordinator) Snapshot() Snapshot {
	return Snapshot{
		State:   c.State(),
		Link:    c.link.Snapshot(),
		Session: c.session.Snapshot(),
		Stats:   *c.stats,
	}
}

// Close disconnects the broker client.
func (c *Coordinator) Close() error {
	return c.session.client.Close()
}
