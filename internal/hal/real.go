//go:build linux

package hal

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// RealPins drives GPIO outputs using the Linux GPIO character device.
type RealPins struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewRealPins requests the given pins as outputs, initialized low.
// Low is the safe state for the heater SSR and the indicator LEDs.
func NewRealPins(pins ...int) (*RealPins, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines := make(map[int]*gpiocdev.Line, len(pins))
	for _, p := range pins {
		line, err := chip.RequestLine(p, gpiocdev.AsOutput(0))
		if err != nil {
			for _, l := range lines {
				l.Close()
			}
			chip.Close()
			return nil, fmt.Errorf("request output pin %d: %w", p, err)
		}
		lines[p] = line
	}

	return &RealPins{chip: chip, lines: lines}, nil
}

// Set drives the pin high or low.
func (r *RealPins) Set(pin int, high bool) error {
	line, ok := r.lines[pin]
	if !ok {
		return fmt.Errorf("pin %d not requested", pin)
	}
	v := 0
	if high {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set pin %d: %w", pin, err)
	}
	return nil
}

// Close drives every requested pin low and releases the lines. Forcing
// low on the way out guarantees the heater is not left energized if the
// daemon is stopped or restarted.
func (r *RealPins) Close() error {
	var errs []error
	for p, line := range r.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("lower pin %d: %w", p, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", p, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealADC reads single-ended channels of an ADS1115 over I2C.
type RealADC struct {
	bus  i2c.BusCloser
	pins map[int]ads1x15.PinADC
}

var adsChannels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// NewRealADC opens the default I2C bus and prepares the given channels
// for single-shot reads at the full-scale range used by the sensor and
// dial dividers.
func NewRealADC(channels ...int) (*RealADC, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	pins := make(map[int]ads1x15.PinADC, len(channels))
	for _, c := range channels {
		if c < 0 || c >= len(adsChannels) {
			bus.Close()
			return nil, fmt.Errorf("adc channel %d out of range", c)
		}
		pin, err := adc.PinForChannel(adsChannels[c], 3300*physic.MilliVolt, 128*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("prepare adc channel %d: %w", c, err)
		}
		pins[c] = pin
	}

	return &RealADC{bus: bus, pins: pins}, nil
}

// Read performs one conversion on the channel and returns the raw count.
func (r *RealADC) Read(channel int) (int, error) {
	pin, ok := r.pins[channel]
	if !ok {
		return 0, fmt.Errorf("adc channel %d not prepared", channel)
	}
	sample, err := pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read adc channel %d: %w", channel, err)
	}
	return int(sample.Raw), nil
}

// Close halts the prepared channels and closes the bus.
func (r *RealADC) Close() error {
	var errs []error
	for c, pin := range r.pins {
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt channel %d: %w", c, err))
		}
	}
	if r.bus != nil {
		if err := r.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
