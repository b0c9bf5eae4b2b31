// Package wifi provides link-layer primitives for the network interface
// the broker session runs over. Connection requests are fire-and-forget:
// the result is observed by probing on a later tick.
package wifi

import (
	"errors"
	"net"
)

// ErrJoinInProgress is returned by Begin while an earlier request is still
// being carried out. No new request was issued.
var ErrJoinInProgress = errors.New("wifi: join already in progress")

// Link abstracts the local network interface.
type Link interface {
	// Up reports whether the interface is connected and addressed.
	Up() bool

	// Begin starts a connection attempt and returns immediately.
	// A nil error only means the request was issued.
	Begin() error

	// HardwareAddr returns the interface MAC address.
	HardwareAddr() (net.HardwareAddr, error)
}
