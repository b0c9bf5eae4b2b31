package connectivity

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backoff is a doubling delay with a ceiling. The zero value is unusable;
// use NewBackoff.
type Backoff struct {
	exp     *backoff.ExponentialBackOff
	current time.Duration
}

// stoppedClock feeds ExponentialBackOff's elapsed-time bookkeeping. With
// MaxElapsedTime zero the value is never consulted.
type stoppedClock struct{}

func (stoppedClock) Now() time.Time { return time.Time{} }

// NewBackoff returns a Backoff starting at base. A max below base is
// raised to base.
func NewBackoff(base, max time.Duration) Backoff {
	if max < base {
		max = base
	}
	b := Backoff{exp: backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(max),
		backoff.WithMaxElapsedTime(0),
		backoff.WithClockProvider(stoppedClock{}),
	)}
	b.Reset()
	return b
}

// Current is the delay that gates the next attempt.
func (b *Backoff) Current() time.Duration {
	return b.current
}

// Reset collapses the delay back to base.
func (b *Backoff) Reset() {
	b.exp.Reset()
	b.current = b.exp.NextBackOff()
}

// Grow doubles the delay up to the ceiling and returns the new value.
func (b *Backoff) Grow() time.Duration {
	b.current = b.exp.NextBackOff()
	return b.current
}
