package connectivity

import (
	"errors"
	"time"
)

var (
	// ErrLinkUnavailable wraps failures to request a link connection.
	ErrLinkUnavailable = errors.New("link unavailable")
	// ErrSessionRejected wraps every failed broker handshake. Credential
	// refusals and transient outages are not distinguished.
	ErrSessionRejected = errors.New("session rejected")
	// ErrPublishFailed wraps a publish batch with at least one failure.
	ErrPublishFailed = errors.New("publish failed")
	// ErrDiscoveryPartial wraps a discovery batch that must be redone.
	ErrDiscoveryPartial = errors.New("discovery partially published")
)

// Status is the state of one connectivity layer.
type Status int

const (
	StatusDown Status = iota
	StatusConnecting
	StatusUp
)

func (s Status) String() string {
	switch s {
	case StatusDown:
		return "DOWN"
	case StatusConnecting:
		return "CONNECTING"
	case StatusUp:
		return "UP"
	}
	return "UNKNOWN"
}

// State is the coordinator state, derived from both layers on demand.
type State int

const (
	StateDisconnected State = iota
	StateLinkOnly
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateLinkOnly:
		return "LINK_ONLY"
	case StateReady:
		return "READY"
	}
	return "UNKNOWN"
}

// Readiness is the per-tick verdict returned to the main loop.
type Readiness int

const (
	NotReady Readiness = iota
	Ready
)

func (r Readiness) String() string {
	if r == Ready {
		return "READY"
	}
	return "NOT_READY"
}

// Layer names used in transitions and logs.
const (
	LayerLink    = "link"
	LayerSession = "session"
)

// Transition records a status change of one layer.
type Transition struct {
	At     time.Time
	Layer  string
	From   Status
	To     Status
	Reason string
}

// TransitionFunc observes transitions. It runs synchronously inside Tick
// and must not block.
type TransitionFunc func(Transition)

// Stats counts connectivity activity since process start.
type Stats struct {
	LinkAttempts       int
	SessionAttempts    int
	SessionFailures    int
	DiscoveryBatches   int
	DiscoveryFailures  int
	TelemetryPublished int
	TelemetryFailed    int
}

// LinkSnapshot is a point-in-time view of LinkState.
type LinkSnapshot struct {
	Status        Status
	LastAttemptAt time.Time
}

// SessionSnapshot is a point-in-time view of SessionState.
type SessionSnapshot struct {
	Status        Status
	LastAttemptAt time.Time
	Backoff       time.Duration
	DiscoverySent bool
	ClientID      string
}

// Snapshot is a value copy of the coordinator's state, safe to hand to
// other goroutines.
type Snapshot struct {
	State   State
	Link    LinkSnapshot
	Session SessionSnapshot
	Stats   Stats
}

// notifier fans transitions out to the registered observer.
type notifier struct {
	fn TransitionFunc
}

func (n *notifier) emit(t Transition) {
	if n != nil && n.fn != nil {
		n.fn(t)
	}
}
