// Package display classifies the filtered temperature against the
// setpoint band and drives the three status LEDs. The LEDs are named by
// the information they convey (above, in-band, below), not by color.
package display

import (
	"errors"
	"time"

	"github.com/JeffRocchio/TemperatureController/internal/config"
	"github.com/JeffRocchio/TemperatureController/internal/hal"
)

// Region classifies the temperature relative to setpoint +/- half the
// hysteresis band.
type Region uint8

const (
	Below Region = iota
	InBandBelow
	AtSetpoint
	InBandAbove
	Above
)

func (r Region) String() string {
	switch r {
	case Below:
		return "BELOW"
	case InBandBelow:
		return "IN_BAND_BELOW"
	case AtSetpoint:
		return "AT_SETPOINT"
	case InBandAbove:
		return "IN_BAND_ABOVE"
	case Above:
		return "ABOVE"
	default:
		return "UNKNOWN"
	}
}

// Lines returns the indicator line levels for the region.
//
//	Region       above inBand below
//	Below          0     0     1
//	InBandBelow    0     1     1
//	AtSetpoint     0     1     0
//	InBandAbove    1     1     0
//	Above          1     0     0
func (r Region) Lines() (above, inBand, below bool) {
	switch r {
	case Below:
		below = true
	case InBandBelow:
		inBand = true
		below = true
	case AtSetpoint:
		inBand = true
	case InBandAbove:
		inBand = true
		above = true
	case Above:
		above = true
	}
	return
}

// Classify is a pure function of (temp, setpoint, hysteresis). Exact
// equality with the setpoint lands in InBandBelow; AtSetpoint survives
// as the panel's initial region and the fallback for non-finite input.
func Classify(tempF, setpointF, hysteresisF float64) Region {
	halfBand := hysteresisF * 0.5
	switch {
	case tempF < setpointF-halfBand:
		return Below
	case tempF >= setpointF-halfBand && tempF <= setpointF:
		return InBandBelow
	case tempF <= setpointF+halfBand && tempF >= setpointF:
		return InBandAbove
	case tempF > setpointF+halfBand:
		return Above
	default:
		return AtSetpoint
	}
}

// Panel drives the three status LEDs. Region classification is split
// from the pin writes so the control task can classify every control
// tick while the display task rewrites pins on its own cadence.
type Panel struct {
	pins       hal.Pins
	pinAbove   int
	pinInBand  int
	pinBelow   int
	hysteresis float64

	updateInterval uint32
	lastUpdate     uint32

	region     Region
	lastRegion Region
}

// NewPanel creates a Panel. Both the current and last-written region
// start at AtSetpoint, so the LEDs stay dark until the first real
// classification differs.
func NewPanel(pins hal.Pins, cfg config.PinConfig, hysteresisF float64, updateIntervalMs uint32) *Panel {
	return &Panel{
		pins:           pins,
		pinAbove:       cfg.Above,
		pinInBand:      cfg.InBand,
		pinBelow:       cfg.Below,
		hysteresis:     hysteresisF,
		updateInterval: updateIntervalMs,
		region:         AtSetpoint,
		lastRegion:     AtSetpoint,
	}
}

// SetDisplayState recomputes the region from the current temperature
// and setpoint. It never touches the pins; call Update for that.
func (p *Panel) SetDisplayState(tempF, setpointF float64) {
	p.region = Classify(tempF, setpointF, p.hysteresis)
}

// Update rewrites the LEDs when at least the update interval has
// elapsed since the last gate pass AND the region changed since the
// last write. The interval gate debounces rapid boundary crossings;
// the equality check suppresses redundant pin churn.
func (p *Panel) Update(now uint32) error {
	if now-p.lastUpdate < p.updateInterval {
		return nil
	}
	p.lastUpdate = now

	if p.region == p.lastRegion {
		return nil
	}
	p.lastRegion = p.region

	above, inBand, below := p.region.Lines()
	return p.apply(above, inBand, below)
}

// Region returns the most recently classified region.
func (p *Panel) Region() Region {
	return p.region
}

// SelfTest steps each LED in turn, flashes all three together, then
// steps again. Run once at boot so a dead LED is visible before the
// control loop takes over. Blocking; the sleep is injected for tests.
func (p *Panel) SelfTest(sleep func(time.Duration)) error {
	var errs []error
	step := []int{p.pinBelow, p.pinInBand, p.pinAbove}

	for _, pin := range step {
		errs = append(errs, p.pins.Set(pin, true))
		sleep(250 * time.Millisecond)
		errs = append(errs, p.pins.Set(pin, false))
	}

	errs = append(errs, p.apply(true, true, true))
	sleep(250 * time.Millisecond)
	errs = append(errs, p.apply(false, false, false))
	sleep(250 * time.Millisecond)

	for _, pin := range step {
		errs = append(errs, p.pins.Set(pin, true))
		sleep(250 * time.Millisecond)
		errs = append(errs, p.pins.Set(pin, false))
	}

	return errors.Join(errs...)
}

// AllOff turns every LED off. Used at shutdown.
func (p *Panel) AllOff() error {
	return p.apply(false, false, false)
}

func (p *Panel) apply(above, inBand, below bool) error {
	return errors.Join(
		p.pins.Set(p.pinAbove, above),
		p.pins.Set(p.pinInBand, inBand),
		p.pins.Set(p.pinBelow, below),
	)
}
