// Package sensor converts raw ADC conversions into calibrated
// temperatures and setpoints, and smooths the probe signal. All
// computation is driven by config values; hardware access goes through
// hal.ADC so everything here is testable with scripted samples.
package sensor

import (
	"fmt"

	"github.com/JeffRocchio/TemperatureController/internal/config"
	"github.com/JeffRocchio/TemperatureController/internal/hal"
)

// Probe reads the temperature sensor channel.
type Probe struct {
	adc hal.ADC
	cfg config.SensorConfig
}

// NewProbe creates a Probe reading through the given ADC.
func NewProbe(adc hal.ADC, cfg config.SensorConfig) *Probe {
	return &Probe{adc: adc, cfg: cfg}
}

// Read takes cfg.Samples consecutive conversions, averages them, and
// converts the average to degrees F through the linear transfer
// function. The derived voltage is clamped to [VoltMin, VoltMax] first;
// an open or shorted sensor therefore reads a clamped extreme rather
// than failing. The only error path is an ADC I/O failure.
func (p *Probe) Read() (float64, error) {
	sum := 0
	for i := 0; i < p.cfg.Samples; i++ {
		raw, err := p.adc.Read(p.cfg.ProbeChannel)
		if err != nil {
			return 0, fmt.Errorf("probe sample %d: %w", i, err)
		}
		sum += raw
	}
	avg := float64(sum) / float64(p.cfg.Samples)

	volts := avg * p.cfg.VRef / float64(p.cfg.FullScale)
	if volts < p.cfg.VoltMin {
		volts = p.cfg.VoltMin
	}
	if volts > p.cfg.VoltMax {
		volts = p.cfg.VoltMax
	}

	tempC := (p.cfg.VZeroC - volts) / p.cfg.SlopeVPerC
	return tempC*9/5 + 32, nil
}

// Dial reads the setpoint dial channel.
type Dial struct {
	adc       hal.ADC
	channel   int
	fullScale int
	cfg       config.SetpointConfig
}

// NewDial creates a Dial reading through the given ADC.
func NewDial(adc hal.ADC, sensorCfg config.SensorConfig, setCfg config.SetpointConfig) *Dial {
	return &Dial{
		adc:       adc,
		channel:   sensorCfg.DialChannel,
		fullScale: sensorCfg.FullScale,
		cfg:       setCfg,
	}
}

// Read returns the desired setpoint in degrees F. A single conversion
// is used; the dial path is far less noise-sensitive than the probe.
func (d *Dial) Read() (float64, error) {
	raw, err := d.adc.Read(d.channel)
	if err != nil {
		return 0, fmt.Errorf("dial sample: %w", err)
	}
	return d.mapRaw(raw), nil
}

// mapRaw maps a raw dial position through a two-segment piecewise
// linear interpolation: [0, midRaw] -> [minF, midF] and
// [midRaw, fullScale] -> [midF, maxF]. This pins the dial's electrical
// center to MidF instead of the arithmetic mean of the range.
func (d *Dial) mapRaw(raw int) float64 {
	if raw < 0 {
		raw = 0
	}
	if raw > d.fullScale {
		raw = d.fullScale
	}

	if raw <= d.cfg.MidRaw {
		f := fraction(raw, d.cfg.MidRaw)
		return d.cfg.MinF + f*(d.cfg.MidF-d.cfg.MinF)
	}
	f := fraction(raw-d.cfg.MidRaw, d.fullScale-d.cfg.MidRaw)
	return d.cfg.MidF + f*(d.cfg.MaxF-d.cfg.MidF)
}

// fraction returns pos/span, treating a degenerate zero-or-negative
// span as fraction 0 instead of dividing by zero.
func fraction(pos, span int) float64 {
	if span <= 0 {
		return 0
	}
	return float64(pos) / float64(span)
}

// Filter is an exponential moving average over the probe signal. It
// attenuates sampling noise without the latency of a second windowed
// average on top of the per-read averaging the Probe already does.
type Filter struct {
	alpha float64
	value float64
}

// NewFilter creates a Filter with the given coefficient, seeded with a
// plausible starting value so the first control decisions aren't made
// against zero.
func NewFilter(alpha, seed float64) *Filter {
	return &Filter{alpha: alpha, value: seed}
}

// Update blends a new raw reading into the filtered value and returns
// the result.
func (f *Filter) Update(raw float64) float64 {
	f.value = f.value*(1-f.alpha) + raw*f.alpha
	return f.value
}

// Value returns the current filtered value.
func (f *Filter) Value() float64 {
	return f.value
}
