package connectivity

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/sweeney/room-monitor/internal/mqtt"
)

// Credentials for the broker. An empty Username means anonymous connect.
type Credentials struct {
	Username string
	Password string
}

// SessionState tracks the broker session and owns broker reconnection.
// It exclusively owns the client handle.
//
// The broker handshake is synchronous, so Connecting is never observable
// from outside an Ensure call: the session moves straight from Down to Up
// or stays Down.
type SessionState struct {
	link           *LinkState
	client         mqtt.Client
	creds          Credentials
	clientIDPrefix string
	bufferSize     int
	logger         *slog.Logger
	notify         *notifier
	stats          *Stats

	status        Status
	lastAttemptAt time.Time
	attempted     bool
	backoff       Backoff
	discoverySent bool
	clientID      string
}

// Ensure returns true if the broker session is up, connecting if allowed.
// A down link returns false without touching the backoff timers.
func (s *SessionState) Ensure(now time.Time) bool {
	if !s.link.Ensure(now) {
		if s.status == StatusUp {
			s.drop(now, "link down")
		}
		return false
	}

	if s.status == StatusUp {
		if s.client.IsConnected() {
			s.backoff.Reset()
			return true
		}
		s.drop(now, "broker connection closed")
	}

	if s.attempted && now.Sub(s.lastAttemptAt) < s.backoff.Current() {
		return false
	}
	return s.connect(now)
}

func (s *SessionState) connect(now time.Time) bool {
	s.attempted = true
	s.lastAttemptAt = now
	s.discoverySent = false
	s.stats.SessionAttempts++

	err := s.dial()
	if err != nil {
		s.stats.SessionFailures++
		next := s.backoff.Grow()
		err = fmt.Errorf("%w: %w", ErrSessionRejected, err)
		s.logger.Warn("mqtt connect failed", "client_id", s.clientID, "error", err, "retry_in", next)
		s.set(now, StatusDown, err.Error())
		return false
	}

	s.backoff.Reset()
	s.logger.Info("mqtt connected", "client_id", s.clientID, "authenticated", s.creds.Username != "")
	s.set(now, StatusUp, "connected")
	return true
}

func (s *SessionState) dial() error {
	mac, err := s.link.link.HardwareAddr()
	if err != nil {
		return fmt.Errorf("client id: %w", err)
	}
	s.clientID = ClientID(s.clientIDPrefix, mac)

	req := mqtt.ConnectRequest{ClientID: s.clientID}
	if s.creds.Username != "" {
		req.Username = s.creds.Username
		req.Password = s.creds.Password
	}
	return s.client.Connect(req)
}

// drop forces the session down. The stale client handle is replaced by the
// next connect attempt.
func (s *SessionState) drop(now time.Time, reason string) {
	s.discoverySent = false
	s.logger.Warn("mqtt session lost", "reason", reason)
	s.set(now, StatusDown, reason)
}

// publish sends one message if the session is up and the packet fits the
// outgoing buffer.
func (s *SessionState) publish(msg mqtt.Message) error {
	if !s.ready() {
		return mqtt.ErrNotConnected
	}
	if size := mqtt.PacketSize(msg); s.bufferSize > 0 && size > s.bufferSize {
		return fmt.Errorf("%w: %d > %d", mqtt.ErrPayloadTooLarge, size, s.bufferSize)
	}
	return s.client.Publish(msg)
}

// ready reports whether publishes may be attempted. It performs no I/O.
func (s *SessionState) ready() bool {
	return s.status == StatusUp && s.client.IsConnected()
}

// Status returns the session status.
func (s *SessionState) Status() Status {
	return s.status
}

// DiscoverySent reports whether the current unbroken session has
// announced itself.
func (s *SessionState) DiscoverySent() bool {
	return s.discoverySent
}

// Backoff returns the delay gating the next attempt.
func (s *SessionState) Backoff() time.Duration {
	return s.backoff.Current()
}

// Snapshot returns a copy of the session state.
func (s *SessionState) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Status:        s.status,
		LastAttemptAt: s.lastAttemptAt,
		Backoff:       s.backoff.Current(),
		DiscoverySent: s.discoverySent,
		ClientID:      s.clientID,
	}
}

func (s *SessionState) set(now time.Time, to Status, reason string) {
	if s.status == to {
		return
	}
	from := s.status
	s.status = to
	s.notify.emit(Transition{At: now, Layer: LayerSession, From: from, To: to, Reason: reason})
}

// ClientID derives the broker client identifier: prefix followed by the
// MAC address in lower-case hex, two digits per byte.
func ClientID(prefix string, mac net.HardwareAddr) string {
	return prefix + hex.EncodeToString(mac)
}
