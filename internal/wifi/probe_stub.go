//go:build !linux

package wifi

import "errors"

// probeInterface is not available on non-Linux platforms.
func probeInterface(name string) (ifaceState, error) {
	return ifaceState{}, errors.New("wifi: not supported on this platform (requires Linux)")
}
