// Package hal provides hardware access with abstraction for testing.
// The real implementations use the Linux GPIO character device and an
// ADS1115 ADC over I2C. The fakes allow testing without hardware.
package hal

import "time"

// ADC reads raw analog conversion results.
type ADC interface {
	// Read returns one raw conversion result from the given channel.
	// The value is in [0, fullScale] for a single-ended input.
	Read(channel int) (int, error)

	// Close releases ADC resources.
	Close() error
}

// Pins drives digital output pins.
type Pins interface {
	// Set drives the given pin high or low. Fire-and-forget: a failed
	// write is reported but the caller is expected to retry on its next
	// cycle rather than treat it as fatal.
	Set(pin int, high bool) error

	// Close drives all requested pins low and releases them.
	Close() error
}

// Default pin assignments (BCM numbering) and ADC channels.
const (
	DefaultPinHeater = 17 // SSR driving the heating element
	DefaultPinAbove  = 22 // orange LED
	DefaultPinInBand = 23 // green LED
	DefaultPinBelow  = 24 // blue LED

	DefaultProbeChannel = 0
	DefaultDialChannel  = 1
)

// Clock returns elapsed milliseconds as an unsigned 32-bit counter.
// Consumers compute elapsed time with uint32 subtraction, which stays
// correct across a single wrap of the counter (~49.7 days).
type Clock func() uint32

// NewClock returns a Clock counting milliseconds since it was created,
// backed by the runtime's monotonic clock.
func NewClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}
