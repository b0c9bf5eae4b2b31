// Package status provides a thread-safe status tracker for the room monitor.
// It is written by the main loop and read by HTTP handlers and the metrics
// collectors.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/room-monitor/internal/connectivity"
	"github.com/sweeney/room-monitor/internal/sensor"
)

// Config contains node configuration for display.
type Config struct {
	DeviceID        string
	DeviceName      string
	Broker          string
	HTTPAddr        string
	LoopInterval    time.Duration
	PublishInterval time.Duration
	LinkRetryDelay  time.Duration
	BackoffBase     time.Duration
	BackoffMax      time.Duration
}

// Snapshot is a point-in-time view of node state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Reading     sensor.Reading
	HasReading  bool
	ReadingAt   time.Time
	ReadError   string
	ReadErrorAt time.Time

	LastPublishAt time.Time
	LastPublishOK bool

	Connectivity   connectivity.Snapshot
	History        []connectivity.Transition // oldest first
	HistoryDropped int

	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the node started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether the broker session was up at the last tick.
func (s Snapshot) Ready() bool {
	return s.Connectivity.State == connectivity.StateReady
}

// Tracker holds mutable node state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	history *history
}

// NewTracker creates a Tracker with the given start time and config. The
// transition history keeps the most recent historySize entries.
func NewTracker(startTime time.Time, cfg Config, historySize int) *Tracker {
	if historySize < 1 {
		historySize = 1
	}
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		history: newHistory(historySize),
	}
}

// SetReading records a successful sensor sample. It clears any previous
// read error.
func (t *Tracker) SetReading(r sensor.Reading, at time.Time) {
	t.mu.Lock()
	t.snap.Reading = r
	t.snap.HasReading = true
	t.snap.ReadingAt = at
	t.snap.ReadError = ""
	t.mu.Unlock()
}

// SetReadError records a failed sensor sample. The last good reading is
// kept.
func (t *Tracker) SetReadError(err error, at time.Time) {
	t.mu.Lock()
	t.snap.ReadError = err.Error()
	t.snap.ReadErrorAt = at
	t.mu.Unlock()
}

// SetConnectivity stores the coordinator state after a tick.
func (t *Tracker) SetConnectivity(c connectivity.Snapshot) {
	t.mu.Lock()
	t.snap.Connectivity = c
	t.mu.Unlock()
}

// SetPublished records the outcome of a telemetry publish.
func (t *Tracker) SetPublished(at time.Time, ok bool) {
	t.mu.Lock()
	t.snap.LastPublishAt = at
	t.snap.LastPublishOK = ok
	t.mu.Unlock()
}

// Record appends a layer transition to the history. It has the shape of
// connectivity.TransitionFunc.
func (t *Tracker) Record(tr connectivity.Transition) {
	t.mu.Lock()
	t.history.push(tr)
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the node state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.History = t.history.all()
	s.HistoryDropped = t.history.dropped
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
