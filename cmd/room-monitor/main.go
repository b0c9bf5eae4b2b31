// Command room-monitor samples room sensors, shows them on a local status
// page and publishes them to an MQTT broker with Home Assistant discovery.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/room-monitor/internal/advertise"
	"github.com/sweeney/room-monitor/internal/config"
	"github.com/sweeney/room-monitor/internal/connectivity"
	"github.com/sweeney/room-monitor/internal/display"
	"github.com/sweeney/room-monitor/internal/led"
	"github.com/sweeney/room-monitor/internal/metrics"
	"github.com/sweeney/room-monitor/internal/mqtt"
	"github.com/sweeney/room-monitor/internal/sensor"
	"github.com/sweeney/room-monitor/internal/status"
	"github.com/sweeney/room-monitor/internal/web"
	"github.com/sweeney/room-monitor/internal/wifi"
)

func main() {
	configPath := flag.String("config", "", "Config file (default: ./room-monitor.yaml, then /etc/room-monitor/config.yaml)")
	logLevel := flag.String("log-level", "", "Override log_level (trace, debug, info, warn, error)")
	printReading := flag.Bool("print-reading", false, "Read the sensors once, print and exit")

	flag.Parse()

	if err := run(*configPath, *logLevel, *printReading); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string, printReading bool) error {
	cfg, source, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel) // checked by Validate
	logger := config.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)
	logger.Info("config loaded", "source", source)

	reader, err := sensor.NewIIOReader(iioConfig(cfg))
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer reader.Close()

	if printReading {
		r, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read sensors: %w", err)
		}
		display.NewTextView(os.Stdout).Render(r)
		return nil
	}

	tracker := status.NewTracker(time.Now(), statusConfig(cfg), cfg.HistorySize)

	link := wifi.NewRealLink(wifi.Config{
		Interface:   cfg.Link.Interface,
		SSID:        cfg.Link.SSID,
		Password:    cfg.Link.Password,
		Command:     cfg.Link.Command,
		JoinTimeout: cfg.Link.JoinTimeout,
	}, logger.With("component", "wifi"))
	client := mqtt.NewRealClient(mqtt.Options{
		Broker:         cfg.MQTT.Broker,
		QoS:            cfg.MQTT.QoS,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
		PublishTimeout: cfg.MQTT.PublishTimeout,
		KeepAlive:      cfg.MQTT.KeepAlive,
	}, logger.With("component", "mqtt"))

	coord, err := connectivity.New(connectivityConfig(cfg), link, client, logger)
	if err != nil {
		return fmt.Errorf("init connectivity: %w", err)
	}
	defer coord.Close()
	coord.OnTransition(tracker.Record)

	if cfg.HTTP.Enabled {
		stop, err := startHTTP(cfg, tracker, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	var indicator *led.Indicator
	if cfg.LED.Enabled {
		drv, err := led.NewRealDriver(cfg.LED.Chip, cfg.LED.Line)
		if err != nil {
			// The node is still useful without its LED.
			logger.Warn("led disabled", "error", err)
		} else {
			indicator = led.NewIndicator(drv)
			defer indicator.Off()
		}
	}

	view := display.MultiView{display.NewStatusView(tracker, time.Now)}

	logger.Info("started",
		"device", cfg.Device.ID,
		"broker", cfg.MQTT.Broker,
		"loop", cfg.LoopInterval,
		"publish", cfg.PublishInterval)

	ticker := time.NewTicker(cfg.LoopInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reader, coord, view, tracker, indicator, cfg.PublishInterval, time.Now, ticker.C, sigCh, logger)
}

// runLoop is the cooperative main loop. Each tick it samples the sensors,
// advances the connectivity state machines, publishes a reading when the
// session is ready and the publish interval has elapsed, then renders.
// Nothing in a tick blocks beyond the broker connect and publish timeouts.
func runLoop(reader sensor.Reader, coord *connectivity.Coordinator, view display.View, tracker *status.Tracker, indicator *led.Indicator, publishInterval time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, logger *slog.Logger) error {
	var lastPublish time.Time
	published := false

	for {
		select {
		case s := <-sig:
			logger.Info("shutting down", "signal", s.String())
			return nil

		case <-tick:
			t := now()

			r, err := reader.Read()
			valid := err == nil
			if !valid {
				logger.Warn("sensor read failed", "error", err)
				tracker.SetReadError(err, t)
			}

			ready := coord.Tick(t)

			if ready == connectivity.Ready && valid && (!published || t.Sub(lastPublish) >= publishInterval) {
				ok := coord.PublishReading(r)
				// A failed batch is superseded by the next scheduled one.
				lastPublish = t
				published = true
				tracker.SetPublished(t, ok)
			}

			if valid {
				view.Render(r)
			}

			tracker.SetConnectivity(coord.Snapshot())
			if indicator != nil {
				if err := indicator.Update(coord.State()); err != nil {
					logger.Warn("led update failed", "error", err)
				}
			}
		}
	}
}

// loadConfig returns the parsed config and where it came from. With no
// explicit path and no file in the search path the built-in defaults are
// used.
func loadConfig(explicit string) (*config.Config, string, error) {
	path, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return config.Default(), "defaults", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

// startHTTP serves the status page and metrics, and advertises them over
// mDNS when enabled. The returned func stops both.
func startHTTP(cfg *config.Config, tracker *status.Tracker, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		return nil, fmt.Errorf("http listen: %w", err)
	}

	srv := web.New(cfg.HTTP.Address, tracker, metrics.NewRegistry(tracker))
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("http status server listening", "addr", ln.Addr().String())

	var adv *advertise.Advertiser
	if cfg.HTTP.Advertise {
		adv = advertise.New(logger.With("component", "mdns"))
		info := advertise.Info{
			Instance:  cfg.Device.Name,
			DeviceID:  cfg.Device.ID,
			Model:     cfg.Device.Model,
			Port:      ln.Addr().(*net.TCPAddr).Port,
			Interface: cfg.Link.Interface,
		}
		if err := adv.Start(info); err != nil {
			logger.Warn("mdns advertisement failed", "error", err)
		}
	}

	return func() {
		if adv != nil {
			adv.Stop()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}

func connectivityConfig(cfg *config.Config) connectivity.Config {
	return connectivity.Config{
		LinkRetryDelay: cfg.Link.RetryDelay,
		BackoffBase:    cfg.MQTT.BackoffBase,
		BackoffMax:     cfg.MQTT.BackoffMax,
		ClientIDPrefix: cfg.MQTT.ClientIDPrefix,
		Credentials: connectivity.Credentials{
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		},
		BufferSize: cfg.MQTT.BufferSize,
		Topics: mqtt.Topics{
			StatePrefix:     cfg.MQTT.StatePrefix,
			DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
			DeviceID:        cfg.Device.ID,
		},
		Identity: mqtt.Identity{
			ID:           cfg.Device.ID,
			Name:         cfg.Device.Name,
			Model:        cfg.Device.Model,
			Manufacturer: cfg.Device.Manufacturer,
		},
	}
}

func iioConfig(cfg *config.Config) sensor.IIOConfig {
	return sensor.IIOConfig{
		EnvDevice:    cfg.Sensors.EnvDevice,
		ADCDevice:    cfg.Sensors.ADCDevice,
		Soil1Channel: cfg.Sensors.Soil1Channel,
		Soil2Channel: cfg.Sensors.Soil2Channel,
		Soil: sensor.SoilCalibration{
			AdcMin: cfg.Sensors.SoilADCMin,
			AdcMax: cfg.Sensors.SoilADCMax,
		},
	}
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		DeviceID:        cfg.Device.ID,
		DeviceName:      cfg.Device.Name,
		Broker:          cfg.MQTT.Broker,
		HTTPAddr:        cfg.HTTP.Address,
		LoopInterval:    cfg.LoopInterval,
		PublishInterval: cfg.PublishInterval,
		LinkRetryDelay:  cfg.Link.RetryDelay,
		BackoffBase:     cfg.MQTT.BackoffBase,
		BackoffMax:      cfg.MQTT.BackoffMax,
	}
}
