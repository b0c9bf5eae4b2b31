package led

import (
	"errors"
	"testing"

	"github.com/sweeney/room-monitor/internal/connectivity"
)

func TestIndicatorReadyIsSolid(t *testing.T) {
	d := NewFakeDriver()
	ind := NewIndicator(d)

	for i := 0; i < 5; i++ {
		if err := ind.Update(connectivity.StateReady); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(d.Writes) != 1 {
		t.Errorf("expected 1 write for a steady state, got %d", len(d.Writes))
	}
	if !d.Level() {
		t.Error("expected LED on when ready")
	}
}

func TestIndicatorDisconnectedIsOff(t *testing.T) {
	d := NewFakeDriver()
	ind := NewIndicator(d)

	ind.Update(connectivity.StateDisconnected)
	ind.Update(connectivity.StateDisconnected)

	if len(d.Writes) != 1 || d.Level() {
		t.Errorf("expected one off write, got %v", d.Writes)
	}
}

func TestIndicatorLinkOnlyBlinks(t *testing.T) {
	d := NewFakeDriver()
	ind := NewIndicator(d)

	for i := 0; i < 4; i++ {
		ind.Update(connectivity.StateLinkOnly)
	}

	want := []bool{true, false, true, false}
	if len(d.Writes) != len(want) {
		t.Fatalf("writes: got %v, want %v", d.Writes, want)
	}
	for i := range want {
		if d.Writes[i] != want[i] {
			t.Errorf("write %d: got %v, want %v", i, d.Writes[i], want[i])
		}
	}
}

func TestIndicatorStateChanges(t *testing.T) {
	d := NewFakeDriver()
	ind := NewIndicator(d)

	ind.Update(connectivity.StateDisconnected) // off
	ind.Update(connectivity.StateLinkOnly)     // on
	ind.Update(connectivity.StateReady)        // still on, no write
	ind.Update(connectivity.StateDisconnected) // off

	want := []bool{false, true, false}
	if len(d.Writes) != len(want) {
		t.Fatalf("writes: got %v, want %v", d.Writes, want)
	}
	for i := range want {
		if d.Writes[i] != want[i] {
			t.Errorf("write %d: got %v, want %v", i, d.Writes[i], want[i])
		}
	}
}

func TestIndicatorSetErrorRetried(t *testing.T) {
	d := NewFakeDriver()
	d.SetError = errors.New("line busy")
	ind := NewIndicator(d)

	if err := ind.Update(connectivity.StateReady); err == nil {
		t.Fatal("expected error")
	}
	if ind.On() {
		t.Error("failed write should not change the recorded level")
	}

	d.SetError = nil
	if err := ind.Update(connectivity.StateReady); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Level() {
		t.Error("expected LED on after retry")
	}
}

func TestIndicatorOff(t *testing.T) {
	d := NewFakeDriver()
	ind := NewIndicator(d)
	ind.Update(connectivity.StateReady)

	if err := ind.Off(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Level() {
		t.Error("expected LED off")
	}
	if !d.Closed {
		t.Error("expected driver closed")
	}
}

func TestFakeDriverReset(t *testing.T) {
	d := NewFakeDriver()
	d.Set(true)
	d.Close()
	d.Reset()

	if len(d.Writes) != 0 || d.Closed {
		t.Errorf("reset did not clear state: %+v", d)
	}
}
