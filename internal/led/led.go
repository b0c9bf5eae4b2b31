// Package led drives the connectivity indicator LED.
// The real driver uses the Linux GPIO character device.
// The fake driver allows testing without hardware.
package led

import (
	"fmt"

	"github.com/sweeney/room-monitor/internal/connectivity"
)

// Driver sets the level of one output line.
type Driver interface {
	// Set drives the line high (on) or low.
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Indicator shows the coordinator state on an LED:
// Ready is solid on, LinkOnly blinks once per update, Disconnected is off.
// Not safe for concurrent use.
type Indicator struct {
	driver  Driver
	on      bool
	written bool
}

// NewIndicator creates an Indicator. The LED level is unknown until the
// first Update.
func NewIndicator(d Driver) *Indicator {
	return &Indicator{driver: d}
}

// Update drives the LED for state. The line is written only when its
// level changes.
func (i *Indicator) Update(state connectivity.State) error {
	var want bool
	switch state {
	case connectivity.StateReady:
		want = true
	case connectivity.StateLinkOnly:
		want = !i.on
	}
	return i.set(want)
}

// On reports the last level written.
func (i *Indicator) On() bool {
	return i.on
}

// Off turns the LED off and releases the driver.
func (i *Indicator) Off() error {
	if err := i.set(false); err != nil {
		i.driver.Close()
		return err
	}
	return i.driver.Close()
}

func (i *Indicator) set(on bool) error {
	if i.written && i.on == on {
		return nil
	}
	if err := i.driver.Set(on); err != nil {
		return fmt.Errorf("led: %w", err)
	}
	i.on = on
	i.written = true
	return nil
}
