//go:build linux

package wifi

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// probeInterface reads link state and addresses over rtnetlink.
func probeInterface(name string) (ifaceState, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return ifaceState{}, fmt.Errorf("lookup %s: %w", name, err)
	}
	attrs := link.Attrs()

	st := ifaceState{MAC: attrs.HardwareAddr}
	// Some drivers never report an operational state.
	oper := attrs.OperState == netlink.OperUp ||
		(attrs.OperState == netlink.OperUnknown && attrs.Flags&net.FlagRunning != 0)
	st.Up = attrs.Flags&net.FlagUp != 0 && oper
	if !st.Up {
		return st, nil
	}

	addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return st, fmt.Errorf("addresses of %s: %w", name, err)
	}
	for _, a := range addrs {
		if a.IPNet != nil {
			st.Addrs = append(st.Addrs, a.IP)
		}
	}
	return st, nil
}
