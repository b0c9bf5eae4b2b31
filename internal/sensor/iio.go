package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IIOConfig locates the sysfs attributes backing each channel.
type IIOConfig struct {
	// EnvDevice is the IIO device directory of the combined
	// temperature/humidity/pressure sensor (e.g. a BME280).
	EnvDevice string
	// ADCDevice is the IIO device directory of the soil probe ADC.
	ADCDevice string
	// Soil1Channel and Soil2Channel are ADC input indices.
	Soil1Channel int
	Soil2Channel int
	Soil         SoilCalibration
}

// IIOReader reads sensors through the Linux industrial I/O sysfs interface.
type IIOReader struct {
	cfg IIOConfig
}

// NewIIOReader checks that both device directories exist.
func NewIIOReader(cfg IIOConfig) (*IIOReader, error) {
	for _, dir := range []string{cfg.EnvDevice, cfg.ADCDevice} {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("iio device: %w", err)
		}
	}
	if cfg.Soil.AdcMax == 0 && cfg.Soil.AdcMin == 0 {
		cfg.Soil = DefaultSoilCalibration
	}
	return &IIOReader{cfg: cfg}, nil
}

// Read samples every channel.
func (r *IIOReader) Read() (Reading, error) {
	var out Reading

	milliC, err := readNumber(filepath.Join(r.cfg.EnvDevice, "in_temp_input"))
	if err != nil {
		return Reading{}, &ReadError{Channel: ChannelTemperature, Err: err}
	}
	milliPct, err := readNumber(filepath.Join(r.cfg.EnvDevice, "in_humidityrelative_input"))
	if err != nil {
		return Reading{}, &ReadError{Channel: ChannelHumidity, Err: err}
	}
	kpa, err := readNumber(filepath.Join(r.cfg.EnvDevice, "in_pressure_input"))
	if err != nil {
		return Reading{}, &ReadError{Channel: ChannelPressure, Err: err}
	}
	soil1, err := readNumber(r.adcPath(r.cfg.Soil1Channel))
	if err != nil {
		return Reading{}, &ReadError{Channel: ChannelSoil1, Err: err}
	}
	soil2, err := readNumber(r.adcPath(r.cfg.Soil2Channel))
	if err != nil {
		return Reading{}, &ReadError{Channel: ChannelSoil2, Err: err}
	}

	out.TemperatureC = milliC / 1000
	out.HumidityPct = milliPct / 1000
	out.PressureHPa = kpa * 10
	out.Soil1Pct = r.cfg.Soil.Percent(int(soil1))
	out.Soil2Pct = r.cfg.Soil.Percent(int(soil2))
	return out, nil
}

// Close is a no-op; sysfs attributes are opened per read.
func (r *IIOReader) Close() error {
	return nil
}

func (r *IIOReader) adcPath(ch int) string {
	return filepath.Join(r.cfg.ADCDevice, fmt.Sprintf("in_voltage%d_raw", ch))
}

func readNumber(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return v, nil
}
