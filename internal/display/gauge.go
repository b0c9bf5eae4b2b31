// Package display renders readings for local viewing: dial gauges on the
// status page and a one-line text view.
package display

import (
	"math"

	"github.com/sweeney/room-monitor/internal/sensor"
)

// Dial geometry shared by every gauge. Angles are in degrees, clockwise
// from the positive x axis (screen coordinates), so the sweep runs from
// bottom-left over the top to bottom-right.
const (
	StartDeg  = 135.0
	EndDeg    = 405.0
	TickCount = 10
)

// Gauge describes the scale of one dial.
type Gauge struct {
	Channel string
	Label   string
	Unit    string
	Min     float64
	Max     float64
}

// Gauges lists the dials in display order.
var Gauges = []Gauge{
	{Channel: sensor.ChannelTemperature, Label: "Temperature", Unit: "°C", Min: -10, Max: 50},
	{Channel: sensor.ChannelHumidity, Label: "Humidity", Unit: "%", Min: 0, Max: 100},
	{Channel: sensor.ChannelPressure, Label: "Pressure", Unit: "hPa", Min: 950, Max: 1050},
	{Channel: sensor.ChannelSoil1, Label: "Soil 1", Unit: "%", Min: 0, Max: 100},
	{Channel: sensor.ChannelSoil2, Label: "Soil 2", Unit: "%", Min: 0, Max: 100},
}

// Fraction clamps v to the gauge range and maps it to [0, 1].
func (g Gauge) Fraction(v float64) float64 {
	if g.Max <= g.Min {
		return 0
	}
	v = math.Max(g.Min, math.Min(g.Max, v))
	return (v - g.Min) / (g.Max - g.Min)
}

// Angle maps v into the dial sweep.
func (g Gauge) Angle(v float64) float64 {
	return StartDeg + g.Fraction(v)*(EndDeg-StartDeg)
}

// Point is a position in screen coordinates.
type Point struct {
	X, Y float64
}

// Polar returns the point at radius r and angle deg around (cx, cy).
func Polar(cx, cy, r, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: cx + math.Cos(rad)*r, Y: cy + math.Sin(rad)*r}
}

// Needle returns the tip of the needle for v.
func (g Gauge) Needle(v, cx, cy, r float64) Point {
	return Polar(cx, cy, r, g.Angle(v))
}

// Tick is one scale mark, from inner to outer radius.
type Tick struct {
	From, To Point
}

// Ticks returns TickCount+1 evenly spaced marks across the sweep.
func Ticks(cx, cy, inner, outer float64) []Tick {
	ticks := make([]Tick, 0, TickCount+1)
	for i := 0; i <= TickCount; i++ {
		deg := StartDeg + float64(i)*(EndDeg-StartDeg)/TickCount
		ticks = append(ticks, Tick{From: Polar(cx, cy, inner, deg), To: Polar(cx, cy, outer, deg)})
	}
	return ticks
}

// Value extracts the channel's value from a reading.
func Value(channel string, r sensor.Reading) float64 {
	switch channel {
	case sensor.ChannelTemperature:
		return r.TemperatureC
	case sensor.ChannelHumidity:
		return r.HumidityPct
	case sensor.ChannelPressure:
		return r.PressureHPa
	case sensor.ChannelSoil1:
		return float64(r.Soil1Pct)
	case sensor.ChannelSoil2:
		return float64(r.Soil2Pct)
	}
	return math.NaN()
}
