package connectivity

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/room-monitor/internal/wifi"
)

// LinkState tracks link-layer connectivity and owns link reconnection.
// Attempts are spaced by a fixed retry delay.
type LinkState struct {
	link       wifi.Link
	retryDelay time.Duration
	logger     *slog.Logger
	notify     *notifier
	stats      *Stats

	status        Status
	lastAttemptAt time.Time
	attempted     bool
}

func newLinkState(link wifi.Link, retryDelay time.Duration, logger *slog.Logger, n *notifier, stats *Stats) *LinkState {
	return &LinkState{
		link:       link,
		retryDelay: retryDelay,
		logger:     logger,
		notify:     n,
		stats:      stats,
	}
}

// Ensure returns true if the link is up. Otherwise it issues at most one
// non-blocking connect request per retry delay and returns false; the
// outcome is observed by the probe on a later call.
func (l *LinkState) Ensure(now time.Time) bool {
	if l.link.Up() {
		if l.status != StatusUp {
			l.logger.Info("link up")
		}
		l.set(now, StatusUp, "probe reports connected")
		return true
	}

	if l.status == StatusUp {
		l.logger.Warn("link lost")
		l.set(now, StatusDown, "probe reports disconnected")
	}

	if l.attempted && now.Sub(l.lastAttemptAt) < l.retryDelay {
		return false
	}

	err := l.link.Begin()
	if errors.Is(err, wifi.ErrJoinInProgress) {
		// Nothing was issued; retry on the next call.
		l.logger.Debug("link connect still in progress")
		return false
	}

	l.attempted = true
	l.lastAttemptAt = now
	l.stats.LinkAttempts++

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLinkUnavailable, err)
		l.logger.Warn("link connect request failed", "error", err, "retry_in", l.retryDelay)
		l.set(now, StatusDown, err.Error())
		return false
	}

	l.logger.Debug("link connect requested")
	l.set(now, StatusConnecting, "connect requested")
	return false
}

// Status returns the last observed link status.
func (l *LinkState) Status() Status {
	return l.status
}

// Snapshot returns a copy of the link state.
func (l *LinkState) Snapshot() LinkSnapshot {
	return LinkSnapshot{Status: l.status, LastAttemptAt: l.lastAttemptAt}
}

func (l *LinkState) set(now time.Time, to Status, reason string) {
	if l.status == to {
		return
	}
	from := l.status
	l.status = to
	l.notify.emit(Transition{At: now, Layer: LayerLink, From: from, To: to, Reason: reason})
}
