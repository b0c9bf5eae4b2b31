package display

import (
	"fmt"
	"io"
	"time"

	"github.com/sweeney/room-monitor/internal/sensor"
	"github.com/sweeney/room-monitor/internal/status"
)

// View consumes one reading per loop tick. Render must not block.
type View interface {
	Render(r sensor.Reading)
}

// MultiView renders to every view in order.
type MultiView []View

// Render implements View.
func (m MultiView) Render(r sensor.Reading) {
	for _, v := range m {
		v.Render(r)
	}
}

// StatusView hands readings to the status tracker, where the web page
// draws them as gauges.
type StatusView struct {
	tracker *status.Tracker
	now     func() time.Time
}

// NewStatusView creates a StatusView. A nil clock uses time.Now.
func NewStatusView(tracker *status.Tracker, now func() time.Time) *StatusView {
	if now == nil {
		now = time.Now
	}
	return &StatusView{tracker: tracker, now: now}
}

// Render implements View.
func (s *StatusView) Render(r sensor.Reading) {
	s.tracker.SetReading(r, s.now())
}

// TextView writes one line per reading.
type TextView struct {
	w io.Writer
}

// NewTextView creates a TextView writing to w.
func NewTextView(w io.Writer) *TextView {
	return &TextView{w: w}
}

// Render implements View.
func (t *TextView) Render(r sensor.Reading) {
	fmt.Fprintln(t.w, r.String())
}
