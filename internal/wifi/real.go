package wifi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultJoinTimeout bounds a single join request.
const DefaultJoinTimeout = 30 * time.Second

// Config selects the interface and how to (re)join the network.
type Config struct {
	Interface string
	SSID      string
	Password  string
	// Command overrides the reconnect method. When empty, NetworkManager
	// is asked over D-Bus, falling back to wpa_cli reconnect when it is
	// not running.
	Command []string
	// JoinTimeout abandons a request that has not finished. A command
	// still running at the deadline is killed.
	JoinTimeout time.Duration
}

// starter issues one join request and returns a func that blocks until
// the request finishes or ctx expires.
type starter func(ctx context.Context) (wait func() error, err error)

// RealLink probes an OS network interface and requests reconnection in
// the background.
type RealLink struct {
	cfg     Config
	logger  *slog.Logger
	running atomic.Bool

	mu sync.Mutex
	nm networkManager

	// probe is swapped in tests.
	probe func(string) (ifaceState, error)
}

// NewRealLink creates a link for the named interface.
func NewRealLink(cfg Config, logger *slog.Logger) *RealLink {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = DefaultJoinTimeout
	}
	return &RealLink{cfg: cfg, logger: logger, probe: probeInterface}
}

// Up reports whether the interface is operationally up and holds a global
// unicast address.
func (l *RealLink) Up() bool {
	st, err := l.probe(l.cfg.Interface)
	if err != nil {
		return false
	}
	return st.Up && st.addressed()
}

// Begin starts a join request without waiting for it. While an earlier
// request is unfinished it returns ErrJoinInProgress; a request that
// outlives JoinTimeout is abandoned so the next Begin starts fresh.
func (l *RealLink) Begin() error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrJoinInProgress
	}

	method, join := l.joiner()
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.JoinTimeout)
	wait, err := join(ctx)
	if err != nil {
		cancel()
		l.running.Store(false)
		return err
	}

	l.logger.Info("wifi reconnect requested", "interface", l.cfg.Interface, "ssid", l.cfg.SSID, "method", method)
	go l.await(ctx, cancel, method, wait)
	return nil
}

func (l *RealLink) await(ctx context.Context, cancel context.CancelFunc, method string, wait func() error) {
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- wait() }()

	select {
	case err := <-done:
		if err != nil {
			l.logger.Warn("wifi reconnect failed", "method", method, "error", err)
		}
	case <-ctx.Done():
		l.logger.Warn("wifi reconnect timed out", "method", method, "timeout", l.cfg.JoinTimeout)
	}
	l.running.Store(false)
}

// joiner picks the reconnect method.
func (l *RealLink) joiner() (string, starter) {
	if len(l.cfg.Command) > 0 {
		return l.cfg.Command[0], startCommand(l.cfg.Command)
	}
	if nm := l.networkManager(); nm != nil {
		iface, ssid, password := l.cfg.Interface, l.cfg.SSID, l.cfg.Password
		return "networkmanager", func(context.Context) (func() error, error) {
			return func() error { return nm.Activate(iface, ssid, password) }, nil
		}
	}
	args := []string{"wpa_cli", "-i", l.cfg.Interface, "reconnect"}
	return args[0], startCommand(args)
}

// networkManager returns a connected client, dialling on first use and
// again after a failed dial.
func (l *RealLink) networkManager() networkManager {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.nm != nil {
		return l.nm
	}
	nm, err := dialNetworkManager()
	if err != nil {
		l.logger.Debug("networkmanager unavailable, using wpa_cli", "error", err)
		return nil
	}
	l.nm = nm
	return nm
}

func startCommand(args []string) starter {
	return func(ctx context.Context) (func() error, error) {
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.WaitDelay = time.Second
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start %s: %w", args[0], err)
		}
		return cmd.Wait, nil
	}
}

// HardwareAddr returns the interface MAC address.
func (l *RealLink) HardwareAddr() (net.HardwareAddr, error) {
	st, err := l.probe(l.cfg.Interface)
	if err != nil {
		return nil, err
	}
	if len(st.MAC) == 0 {
		return nil, errors.New("interface has no hardware address")
	}
	return st.MAC, nil
}
