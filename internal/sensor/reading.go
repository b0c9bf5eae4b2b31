package sensor

import "fmt"

// Reading is an immutable snapshot of all channels taken in one sampling cycle.
type Reading struct {
	TemperatureC float64
	HumidityPct  float64
	PressureHPa  float64
	Soil1Pct     uint8 // 0..100
	Soil2Pct     uint8 // 0..100
}

// String renders the reading for logs and the -print-reading flag.
func (r Reading) String() string {
	return fmt.Sprintf("T=%.1f°C RH=%.1f%% P=%.1fhPa soil1=%d%% soil2=%d%%",
		r.TemperatureC, r.HumidityPct, r.PressureHPa, r.Soil1Pct, r.Soil2Pct)
}

// SoilCalibration describes the raw ADC span of a capacitive soil probe.
// Dry soil reads AdcMax, saturated soil reads AdcMin.
type SoilCalibration struct {
	AdcMin int
	AdcMax int
}

// DefaultSoilCalibration matches a 10-bit ADC.
var DefaultSoilCalibration = SoilCalibration{AdcMin: 0, AdcMax: 1023}

// Percent maps a raw ADC value inversely onto 0..100 and clamps.
func (c SoilCalibration) Percent(raw int) uint8 {
	if c.AdcMax == c.AdcMin {
		return 0
	}
	// Integer arithmetic, truncating toward zero.
	mapped := (raw-c.AdcMin)*(0-100)/(c.AdcMax-c.AdcMin) + 100
	if mapped < 0 {
		return 0
	}
	if mapped > 100 {
		return 100
	}
	return uint8(mapped)
}
