// Package advertise announces the status endpoint over mDNS so the node
// can be found on the local network without knowing its address.
package advertise

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"unicode/utf8"

	"github.com/enbility/zeroconf/v3"
)

const (
	ServiceType = "_http._tcp"
	Domain      = "local."
	StatusPath  = "/index.json"

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// Info describes the advertised node.
type Info struct {
	Instance  string // e.g. "Room Monitor"
	DeviceID  string
	Model     string
	Port      int
	Interface string // empty advertises on every interface
}

// shutdowner is the part of *zeroconf.Server the advertiser uses.
type shutdowner interface {
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (shutdowner, error)

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface) (shutdowner, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// Advertiser owns at most one mDNS registration.
type Advertiser struct {
	logger   *slog.Logger
	register registerFunc

	mu     sync.Mutex
	server shutdowner
}

// New creates an Advertiser.
func New(logger *slog.Logger) *Advertiser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advertiser{logger: logger, register: zeroconfRegister}
}

// Start registers the service, replacing any earlier registration.
func (a *Advertiser) Start(info Info) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instance := instanceName(info.Instance)

	ifaces, err := interfaces(info.Interface)
	if err != nil {
		return err
	}

	server, err := a.register(instance, ServiceType, Domain, info.Port, TXTRecords(info), ifaces)
	if err != nil {
		return fmt.Errorf("register mdns service: %w", err)
	}
	a.server = server
	a.logger.Info("mdns advertising", "instance", instance, "service", ServiceType, "port", info.Port)
	return nil
}

// instanceName cuts name to MaxInstanceNameLen bytes without splitting a
// UTF-8 sequence.
func instanceName(name string) string {
	if len(name) <= MaxInstanceNameLen {
		return name
	}
	n := MaxInstanceNameLen
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}

// Stop withdraws the registration. Safe to call when not started.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		a.logger.Info("mdns advertisement stopped")
	}
}

// TXTRecords returns the key=value TXT strings for info.
func TXTRecords(info Info) []string {
	txt := []string{"id=" + info.DeviceID, "path=" + StatusPath}
	if info.Model != "" {
		txt = append(txt, "model="+info.Model)
	}
	return txt
}

func interfaces(name string) ([]net.Interface, error) {
	if name == "" {
		return nil, nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("mdns interface %s: %w", name, err)
	}
	return []net.Interface{*iface}, nil
}
