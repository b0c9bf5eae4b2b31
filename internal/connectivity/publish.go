package connectivity

import (
	"fmt"
	"log/slog"

	"github.com/sweeney/room-monitor/internal/mqtt"
	"github.com/sweeney/room-monitor/internal/sensor"
)

// PublishOutcome summarizes a batch publish.
type PublishOutcome struct {
	AllOK     bool
	Attempted int
	Failed    []string // topics
}

// Err returns nil for a fully successful batch.
func (o PublishOutcome) Err() error {
	if o.AllOK {
		return nil
	}
	if o.Attempted == 0 {
		return fmt.Errorf("%w: session not up", ErrPublishFailed)
	}
	return fmt.Errorf("%w: %d of %d messages: %v", ErrPublishFailed, len(o.Failed), o.Attempted, o.Failed)
}

// publishAll attempts every message; one failure does not stop the rest.
func publishAll(s *SessionState, msgs []mqtt.Message, logger *slog.Logger) PublishOutcome {
	out := PublishOutcome{AllOK: true}
	for _, m := range msgs {
		out.Attempted++
		if err := s.publish(m); err != nil {
			out.AllOK = false
			out.Failed = append(out.Failed, m.Topic)
			logger.Debug("mqtt publish failed", "topic", m.Topic, "bytes", len(m.Payload), "error", err)
			continue
		}
		logger.Debug("mqtt published", "topic", m.Topic, "retained", m.Retained)
	}
	return out
}

// DiscoveryPublisher announces every channel to the hub once per session.
type DiscoveryPublisher struct {
	messages []mqtt.Message
	logger   *slog.Logger
	stats    *Stats
}

// NewDiscoveryPublisher prebuilds the static descriptor batch.
func NewDiscoveryPublisher(topics mqtt.Topics, id mqtt.Identity, logger *slog.Logger, stats *Stats) (*DiscoveryPublisher, error) {
	msgs, err := mqtt.DiscoveryMessages(topics, id)
	if err != nil {
		return nil, err
	}
	return &DiscoveryPublisher{messages: msgs, logger: logger, stats: stats}, nil
}

// PublishIfNeeded publishes the whole descriptor batch unless the current
// session already announced itself. Only a fully successful batch marks
// the session; any failure leaves it unmarked so the next tick redoes the
// entire batch.
func (d *DiscoveryPublisher) PublishIfNeeded(s *SessionState) PublishOutcome {
	if s.discoverySent {
		return PublishOutcome{AllOK: true}
	}
	if !s.ready() {
		return PublishOutcome{}
	}

	d.stats.DiscoveryBatches++
	out := publishAll(s, d.messages, d.logger)
	if out.AllOK {
		s.discoverySent = true
		d.logger.Info("discovery published", "messages", out.Attempted)
		return out
	}

	d.stats.DiscoveryFailures++
	sizes := make(map[string]int, len(d.messages))
	for _, m := range d.messages {
		sizes[m.Topic] = mqtt.PacketSize(m)
	}
	d.logger.Warn("discovery publish failed",
		"error", fmt.Errorf("%w: %w", ErrDiscoveryPartial, out.Err()),
		"packet_sizes", sizes)
	return out
}

// Messages returns the descriptor batch.
func (d *DiscoveryPublisher) Messages() []mqtt.Message {
	return d.messages
}

// TelemetryPublisher publishes readings to the per-channel state topics.
type TelemetryPublisher struct {
	topics mqtt.Topics
	logger *slog.Logger
	stats  *Stats
}

// NewTelemetryPublisher creates a publisher for the given topics.
func NewTelemetryPublisher(topics mqtt.Topics, logger *slog.Logger, stats *Stats) *TelemetryPublisher {
	return &TelemetryPublisher{topics: topics, logger: logger, stats: stats}
}

// Publish sends all five channel values, retained. A session that is not
// up fails fast without any client call. Failed channels are not retried
// individually; the next scheduled reading supersedes them.
func (t *TelemetryPublisher) Publish(s *SessionState, r sensor.Reading) PublishOutcome {
	if !s.ready() {
		t.stats.TelemetryFailed++
		return PublishOutcome{}
	}

	out := publishAll(s, mqtt.StateMessages(t.topics, r), t.logger)
	if out.AllOK {
		t.stats.TelemetryPublished++
		t.logger.Debug("telemetry published", "reading", r.String())
		return out
	}
	t.stats.TelemetryFailed++
	t.logger.Warn("telemetry publish incomplete", "error", out.Err())
	return out
}
