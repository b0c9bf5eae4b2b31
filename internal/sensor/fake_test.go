package sensor

import (
	"errors"
	"testing"
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader(
		Reading{TemperatureC: 20.5, Soil1Pct: 10},
		Reading{TemperatureC: 21.0, Soil1Pct: 11},
	)

	r, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TemperatureC != 20.5 || r.Soil1Pct != 10 {
		t.Errorf("reading 0: got %+v", r)
	}

	r, _ = f.Read()
	if r.TemperatureC != 21.0 {
		t.Errorf("reading 1: got %+v", r)
	}

	// Exhausted: repeat last
	r, _ = f.Read()
	if r.TemperatureC != 21.0 || r.Soil1Pct != 11 {
		t.Errorf("reading 2 (repeat): got %+v", r)
	}
	if f.Calls != 3 {
		t.Errorf("Calls: got %d, want 3", f.Calls)
	}
}

func TestFakeReaderNoReadings(t *testing.T) {
	f := NewFakeReader()
	if _, err := f.Read(); err == nil {
		t.Error("expected error with no readings")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader(Reading{})
	f.ReadError = &ReadError{Channel: ChannelPressure, Err: errors.New("i2c nack")}

	_, err := f.Read()
	var re *ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if re.Channel != ChannelPressure {
		t.Errorf("channel: got %q", re.Channel)
	}
	if err.Error() != "read pressure: i2c nack" {
		t.Errorf("message: got %q", err.Error())
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader(Reading{Soil2Pct: 1}, Reading{Soil2Pct: 2})
	f.Read()
	f.Close()
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed {
		t.Error("closed should be reset")
	}
	r, _ := f.Read()
	if r.Soil2Pct != 1 {
		t.Errorf("after reset: got %d, want 1", r.Soil2Pct)
	}
}

func TestSoilPercent(t *testing.T) {
	cal := DefaultSoilCalibration
	tests := []struct {
		raw  int
		want uint8
	}{
		{0, 100},
		{1023, 0},
		{512, 50},
		{-20, 100},
		{2000, 0},
	}
	for _, tt := range tests {
		if got := cal.Percent(tt.raw); got != tt.want {
			t.Errorf("Percent(%d): got %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestSoilPercentDegenerateCalibration(t *testing.T) {
	cal := SoilCalibration{AdcMin: 300, AdcMax: 300}
	if got := cal.Percent(300); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestReadingString(t *testing.T) {
	r := Reading{TemperatureC: 22.5, HumidityPct: 48, PressureHPa: 1013.2, Soil1Pct: 35, Soil2Pct: 60}
	want := "T=22.5°C RH=48.0% P=1013.2hPa soil1=35% soil2=60%"
	if got := r.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
