package wifi

import (
	"errors"
	"fmt"

	"github.com/Wifx/gonetworkmanager/v2"
)

// networkManager is the part of NetworkManager the link drives.
type networkManager interface {
	// Activate asks NetworkManager to bring up a Wi-Fi profile on iface. It
	// returns once the request is accepted, not when the link is up.
	Activate(iface, ssid, password string) error
}

// dialNetworkManager is swapped in tests.
var dialNetworkManager = newNMClient

type nmClient struct {
	nm       gonetworkmanager.NetworkManager
	settings gonetworkmanager.Settings
}

// newNMClient connects to NetworkManager on the system bus. It fails when
// the daemon is not running.
func newNMClient() (networkManager, error) {
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return nil, fmt.Errorf("networkmanager: %w", err)
	}
	if _, err := nm.GetPropertyVersion(); err != nil {
		return nil, fmt.Errorf("networkmanager not running: %w", err)
	}
	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return nil, fmt.Errorf("networkmanager settings: %w", err)
	}
	return &nmClient{nm: nm, settings: settings}, nil
}

// Activate reuses a saved profile for ssid when one exists and creates one
// otherwise. With no ssid the device's first available profile is used.
func (c *nmClient) Activate(iface, ssid, password string) error {
	dev, err := c.nm.GetDeviceByIpIface(iface)
	if err != nil {
		return fmt.Errorf("device %s: %w", iface, err)
	}

	if ssid == "" {
		conns, err := dev.GetPropertyAvailableConnections()
		if err != nil {
			return fmt.Errorf("profiles for %s: %w", iface, err)
		}
		if len(conns) == 0 {
			return errors.New("no saved profile for " + iface)
		}
		_, err = c.nm.ActivateConnection(conns[0], dev, nil)
		return err
	}

	conns, err := c.settings.ListConnections()
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	for _, conn := range conns {
		s, err := conn.GetSettings()
		if err != nil {
			continue
		}
		if profileSSID(s) == ssid {
			_, err = c.nm.ActivateConnection(conn, dev, nil)
			return err
		}
	}
	_, err = c.nm.AddAndActivateConnection(wifiProfile(ssid, password), dev)
	return err
}

func profileSSID(s gonetworkmanager.ConnectionSettings) string {
	w, ok := s["802-11-wireless"]
	if !ok {
		return ""
	}
	b, _ := w["ssid"].([]byte)
	return string(b)
}

// wifiProfile is the settings map of a new WPA-PSK (or open) profile. The
// password travels over D-Bus and never appears on a command line.
func wifiProfile(ssid, password string) map[string]map[string]interface{} {
	p := map[string]map[string]interface{}{
		"connection": {
			"id":          ssid,
			"type":        "802-11-wireless",
			"autoconnect": true,
		},
		"802-11-wireless": {
			"ssid": []byte(ssid),
			"mode": "infrastructure",
		},
	}
	if password != "" {
		p["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "wpa-psk",
			"psk":      password,
		}
	}
	return p
}
