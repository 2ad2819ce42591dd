// Package config loads the controller tuning values from a YAML file.
// Missing files and missing fields fall back to defaults so the daemon
// can run with no configuration at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JeffRocchio/TemperatureController/internal/hal"
)

// Config represents the application configuration.
type Config struct {
	Setpoint SetpointConfig `yaml:"setpoint"`
	Sensor   SensorConfig   `yaml:"sensor"`
	Control  ControlConfig  `yaml:"control"`
	Pins     PinConfig      `yaml:"pins"`
}

// SetpointConfig maps the dial to the desired temperature range.
// MidF is the temperature at the dial's electrical center (MidRaw); it
// is deliberately independent of the arithmetic mean of MinF and MaxF.
type SetpointConfig struct {
	MinF   float64 `yaml:"min_f"`
	MaxF   float64 `yaml:"max_f"`
	MidF   float64 `yaml:"mid_f"`
	MidRaw int     `yaml:"mid_raw"`
}

// SensorConfig contains ADC channels and the probe calibration.
type SensorConfig struct {
	ProbeChannel int `yaml:"probe_channel"`
	DialChannel  int `yaml:"dial_channel"`

	// Samples is the number of consecutive conversions averaged per
	// probe reading.
	Samples   int     `yaml:"samples"`
	VRef      float64 `yaml:"vref"`
	FullScale int     `yaml:"full_scale"`

	// VoltMin/VoltMax clamp the probe voltage before conversion. An
	// open or shorted sensor reads a clamped extreme instead of a
	// physically impossible temperature.
	VoltMin float64 `yaml:"volt_min"`
	VoltMax float64 `yaml:"volt_max"`

	// Linear transfer function: tempC = (VZeroC - voltage) / SlopeVPerC.
	VZeroC     float64 `yaml:"v_zero_c"`
	SlopeVPerC float64 `yaml:"slope_v_per_c"`
}

// ControlConfig contains the control-loop tuning values.
type ControlConfig struct {
	// HysteresisF is the total band width in degrees F; the controller
	// and the display both use half of it as the offset from setpoint.
	HysteresisF float64 `yaml:"hysteresis_f"`
	FilterAlpha float64 `yaml:"filter_alpha"`

	SampleIntervalMs  uint32 `yaml:"sample_interval_ms"`
	ControlIntervalMs uint32 `yaml:"control_interval_ms"`
	DisplayIntervalMs uint32 `yaml:"display_interval_ms"`
}

// PinConfig contains output pin assignments (BCM numbering).
type PinConfig struct {
	Heater int `yaml:"heater"`
	Above  int `yaml:"above"`
	InBand int `yaml:"in_band"`
	Below  int `yaml:"below"`
}

// Default returns a default configuration with sensible values for a
// 100-200W bulb heater on an ADS1115 with a 3.3V reference.
func Default() *Config {
	return &Config{
		Setpoint: SetpointConfig{
			MinF:   50,
			MaxF:   90,
			MidF:   72,
			MidRaw: 16384,
		},
		Sensor: SensorConfig{
			ProbeChannel: hal.DefaultProbeChannel,
			DialChannel:  hal.DefaultDialChannel,
			Samples:      8,
			VRef:         3.3,
			FullScale:    32767,
			VoltMin:      0.2,
			VoltMax:      2.8,
			VZeroC:       2.0,
			SlopeVPerC:   0.01,
		},
		Control: ControlConfig{
			HysteresisF:       2.0,
			FilterAlpha:       0.1,
			SampleIntervalMs:  250,
			ControlIntervalMs: 1000,
			DisplayIntervalMs: 200,
		},
		Pins: PinConfig{
			Heater: hal.DefaultPinHeater,
			Above:  hal.DefaultPinAbove,
			InBand: hal.DefaultPinInBand,
			Below:  hal.DefaultPinBelow,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist,
// defaults are used; fields missing from the file keep their defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the control loop cannot
// operate with.
func (c *Config) Validate() error {
	if c.Setpoint.MinF >= c.Setpoint.MaxF {
		return fmt.Errorf("setpoint range [%v, %v] is empty", c.Setpoint.MinF, c.Setpoint.MaxF)
	}
	if c.Setpoint.MidF < c.Setpoint.MinF || c.Setpoint.MidF > c.Setpoint.MaxF {
		return fmt.Errorf("mid setpoint %v outside range [%v, %v]", c.Setpoint.MidF, c.Setpoint.MinF, c.Setpoint.MaxF)
	}
	if c.Control.HysteresisF <= 0 {
		return fmt.Errorf("hysteresis %v must be positive", c.Control.HysteresisF)
	}
	if c.Control.FilterAlpha <= 0 || c.Control.FilterAlpha >= 1 {
		return fmt.Errorf("filter alpha %v must be in (0, 1)", c.Control.FilterAlpha)
	}
	if c.Sensor.Samples < 1 {
		return fmt.Errorf("sample count %d must be at least 1", c.Sensor.Samples)
	}
	if c.Sensor.FullScale <= 0 {
		return fmt.Errorf("adc full scale %d must be positive", c.Sensor.FullScale)
	}
	if c.Sensor.VoltMin >= c.Sensor.VoltMax {
		return fmt.Errorf("voltage clamp [%v, %v] is empty", c.Sensor.VoltMin, c.Sensor.VoltMax)
	}
	if c.Sensor.SlopeVPerC == 0 {
		return fmt.Errorf("sensor slope must be non-zero")
	}
	if c.Control.SampleIntervalMs == 0 || c.Control.ControlIntervalMs == 0 || c.Control.DisplayIntervalMs == 0 {
		return fmt.Errorf("task intervals must be positive")
	}
	return nil
}
