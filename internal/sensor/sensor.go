// Package sensor provides environmental sensor acquisition with hardware abstraction.
// The real implementation reads Linux IIO sysfs attributes.
// The fake implementation allows testing without hardware.
package sensor

import "fmt"

// Reader produces one Reading per sampling cycle.
type Reader interface {
	// Read samples every channel. A failure on any channel returns a *ReadError.
	Read() (Reading, error)

	// Close releases sensor resources.
	Close() error
}

// Channel names used in errors and wire topics.
const (
	ChannelTemperature = "temperature"
	ChannelHumidity    = "humidity"
	ChannelPressure    = "pressure"
	ChannelSoil1       = "soil1"
	ChannelSoil2       = "soil2"
)

// ReadError reports which channel could not be sampled.
type ReadError struct {
	Channel string
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Channel, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
