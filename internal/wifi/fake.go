package wifi

import "net"

// FakeLink is a test double whose connectivity is set by the test.
type FakeLink struct {
	// Connected controls the return value of Up.
	Connected bool

	// ConnectOnBegin makes Begin flip Connected, as if the join
	// completed before the next probe.
	ConnectOnBegin bool

	// BeginError, if set, will be returned by Begin.
	BeginError error

	// InFlight makes Begin report ErrJoinInProgress.
	InFlight bool

	// BeginCalls counts connection requests.
	BeginCalls int

	// MAC is returned by HardwareAddr.
	MAC net.HardwareAddr

	// MACError, if set, will be returned by HardwareAddr.
	MACError error
}

// NewFakeLink creates a disconnected FakeLink with a fixed MAC.
func NewFakeLink() *FakeLink {
	return &FakeLink{MAC: net.HardwareAddr{0x24, 0x0a, 0xc4, 0x01, 0xab, 0x0f}}
}

// Up reports the scripted connectivity.
func (f *FakeLink) Up() bool {
	return f.Connected
}

// Begin records the request.
func (f *FakeLink) Begin() error {
	f.BeginCalls++
	if f.InFlight {
		return ErrJoinInProgress
	}
	if f.BeginError != nil {
		return f.BeginError
	}
	if f.ConnectOnBegin {
		f.Connected = true
	}
	return nil
}

// HardwareAddr returns the scripted MAC.
func (f *FakeLink) HardwareAddr() (net.HardwareAddr, error) {
	if f.MACError != nil {
		return nil, f.MACError
	}
	return f.MAC, nil
}
