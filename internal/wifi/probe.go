package wifi

import "net"

// ifaceState is what a probe learns about an interface.
type ifaceState struct {
	Up    bool
	MAC   net.HardwareAddr
	Addrs []net.IP
}

// addressed reports whether any address is global unicast. Link-local
// autoconfiguration does not count.
func (s ifaceState) addressed() bool {
	for _, ip := range s.Addrs {
		if ip.IsGlobalUnicast() {
			return true
		}
	}
	return false
}
