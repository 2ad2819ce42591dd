//go:build !linux

package hal

import "errors"

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns an error on non-Linux platforms.
func NewRealPins(pins ...int) (*RealPins, error) {
	return nil, errors.New("hal: gpio not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (r *RealPins) Set(pin int, high bool) error {
	return errors.New("hal: gpio not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealPins) Close() error {
	return nil
}

// RealADC is not available on non-Linux platforms.
type RealADC struct{}

// NewRealADC returns an error on non-Linux platforms.
func NewRealADC(channels ...int) (*RealADC, error) {
	return nil, errors.New("hal: adc not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealADC) Read(channel int) (int, error) {
	return 0, errors.New("hal: adc not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealADC) Close() error {
	return nil
}
