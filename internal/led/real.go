//go:build linux

package led

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives an LED on actual hardware using the Linux GPIO
// character device.
type RealDriver struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealDriver requests the line as an output, initially low.
func NewRealDriver(chipName string, offset int) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("room-monitor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", offset, err)
	}

	return &RealDriver{chip: chip, line: line}, nil
}

// Set drives the line.
func (d *RealDriver) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := d.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED pin: %w", err)
	}
	return nil
}

// Close releases GPIO resources.
// Reconfigures the pin to input with pull-down (matching Pi boot defaults)
// before closing so the LED is not left driven across a reboot.
func (d *RealDriver) Close() error {
	var errs []error

	if d.line != nil {
		if err := d.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure LED pin: %w", err))
		}
		if err := d.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED pin: %w", err))
		}
		d.line = nil
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		d.chip = nil
	}

	return errors.Join(errs...)
}
